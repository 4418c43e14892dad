package gvtext

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNull   // nothing, None
	TokenTrue   // true, True
	TokenFalse  // false, False
	TokenInt    // 123, -0x1f
	TokenFloat  // 1.5, -2e10, inf, nan
	TokenString // 'quoted' or "quoted"
	TokenBytes  // b'bytes'

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenLParen   // (
	TokenRParen   // )
	TokenColon    // :
	TokenComma    // ,

	// Annotations, skipped by the parser
	TokenAnnotation // @as
	TokenTypeWord   // uint32, just, ...

	TokenIdent // any other bare word
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenNull:
		return "NULL"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenBytes:
		return "BYTES"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenAnnotation:
		return "ANNOTATION"
	case TokenTypeWord:
		return "TYPEWORD"
	case TokenIdent:
		return "IDENT"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token.
type Token struct {
	Type   TokenType
	Value  string // Decoded text for strings, raw text otherwise
	Offset int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// typeWords are GVariant text type keywords that may prefix a value.
var typeWords = map[string]bool{
	"boolean": true, "byte": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "int64": true, "uint64": true,
	"handle": true, "double": true, "string": true, "objectpath": true,
	"signature": true, "just": true,
}

// ============================================================
// Variant Marker Stripping
// ============================================================

// StripMarkers removes the variant markers < and > outside quoted spans.
// Quoted spans (single or double quotes, backslash escapes honored) are
// copied verbatim.
func StripMarkers(s string) string {
	if strings.IndexAny(s, "<>") < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	var quote byte // 0 when outside a quoted span
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			sb.WriteByte(ch)
			if ch == '\\' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
			sb.WriteByte(ch)
		case '<', '>':
			// dropped
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// ============================================================
// Lexer
// ============================================================

// Lexer tokenizes value text. It expects variant markers to be stripped.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns all tokens from the input. On a lexical error the last
// token is a TokenError and err describes it.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return append(tokens, Token{Type: TokenError, Offset: tok.Offset}), err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Offset: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	// Single character tokens
	switch ch {
	case '{':
		l.pos++
		return Token{Type: TokenLBrace, Value: "{", Offset: start}, nil
	case '}':
		l.pos++
		return Token{Type: TokenRBrace, Value: "}", Offset: start}, nil
	case '[':
		l.pos++
		return Token{Type: TokenLBracket, Value: "[", Offset: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenRBracket, Value: "]", Offset: start}, nil
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Offset: start}, nil
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Offset: start}, nil
	case ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Offset: start}, nil
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Offset: start}, nil
	case '"', '\'':
		s, err := l.scanString()
		return Token{Type: TokenString, Value: s, Offset: start}, err
	case '@':
		return l.scanAnnotation()
	}

	if ch == 'b' && l.pos+1 < len(l.input) && (l.input[l.pos+1] == '\'' || l.input[l.pos+1] == '"') {
		l.pos++
		s, err := l.scanString()
		return Token{Type: TokenBytes, Value: s, Offset: start}, err
	}

	if ch == '-' || ch == '+' || ch == '.' || isDigit(ch) {
		return l.scanNumber()
	}

	if isIdentStart(ch) {
		return l.scanIdentOrKeyword(), nil
	}

	return Token{Offset: start}, &LiteralError{Message: fmt.Sprintf("unexpected character %q", ch), Offset: start}
}

// scanString scans a single or double quoted string and decodes escapes.
func (l *Lexer) scanString() (string, error) {
	start := l.pos
	quote := l.input[l.pos]
	l.pos++ // consume opening quote

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return "", &LiteralError{Message: "unterminated string", Offset: start}
		}

		ch := l.input[l.pos]
		if ch == quote {
			l.pos++
			return sb.String(), nil
		}
		if ch != '\\' {
			sb.WriteByte(ch)
			l.pos++
			continue
		}

		l.pos++ // consume backslash
		if l.pos >= len(l.input) {
			return "", &LiteralError{Message: "unterminated escape", Offset: l.pos}
		}
		escaped := l.input[l.pos]
		l.pos++
		switch escaped {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'a':
			sb.WriteByte('\a')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteByte(escaped)
		case '\n':
			// line continuation
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[escaped]
			if l.pos+width > len(l.input) {
				return "", &LiteralError{Message: "truncated \\" + string(escaped) + " escape", Offset: l.pos}
			}
			n, err := strconv.ParseUint(l.input[l.pos:l.pos+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(n)) {
				return "", &LiteralError{Message: "invalid \\" + string(escaped) + " escape", Offset: l.pos}
			}
			sb.WriteRune(rune(n))
			l.pos += width
		default:
			// unknown escapes are kept verbatim
			sb.WriteByte('\\')
			sb.WriteByte(escaped)
		}
	}
}

// scanAnnotation scans @<signature>, consuming exactly one complete type.
func (l *Lexer) scanAnnotation() (Token, error) {
	start := l.pos
	p := &sigParser{sig: l.input[l.pos+1:]}
	if _, err := p.parseType(0); err != nil {
		return Token{Offset: start}, &LiteralError{Message: "invalid type annotation: " + err.Error(), Offset: start}
	}
	l.pos += 1 + p.pos
	return Token{Type: TokenAnnotation, Value: l.input[start+1 : l.pos], Offset: start}, nil
}

// scanNumber scans an integer or float with an optional sign.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	if c := l.peek(); c == '-' || c == '+' {
		l.pos++
	}

	// Signed inf and nan
	if isIdentStart(l.peek()) {
		word := l.scanWord()
		switch word {
		case "inf", "nan":
			return Token{Type: TokenFloat, Value: l.input[start:l.pos], Offset: start}, nil
		}
		return Token{Offset: start}, &LiteralError{Message: fmt.Sprintf("invalid number %q", l.input[start:l.pos]), Offset: start}
	}

	// Prefixed integers
	if l.peek() == '0' && l.pos+1 < len(l.input) {
		switch l.input[l.pos+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			l.pos += 2
			for l.pos < len(l.input) && (isHexDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
				l.pos++
			}
			return l.intToken(start)
		}
	}

	isFloat := false
	digits := 0
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
		digits++
	}

	// Decimal part
	if l.peek() == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
			digits++
		}
	}
	if digits == 0 {
		return Token{Offset: start}, &LiteralError{Message: "invalid number", Offset: start}
	}

	// Exponent part
	if c := l.peek(); c == 'e' || c == 'E' {
		isFloat = true
		l.pos++
		if c := l.peek(); c == '+' || c == '-' {
			l.pos++
		}
		if !isDigit(l.peek()) {
			return Token{Offset: start}, &LiteralError{Message: "invalid exponent", Offset: start}
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	if isIdentContinue(l.peek()) {
		return Token{Offset: start}, &LiteralError{Message: "invalid number suffix", Offset: l.pos}
	}
	if isFloat {
		return Token{Type: TokenFloat, Value: l.input[start:l.pos], Offset: start}, nil
	}
	return l.intToken(start)
}

// intToken validates the integer text in input[start:pos]. Integers that do
// not fit in 64 bits are returned as floats.
func (l *Lexer) intToken(start int) (Token, error) {
	text := l.input[start:l.pos]
	if isIdentContinue(l.peek()) {
		return Token{Offset: start}, &LiteralError{Message: "invalid number suffix", Offset: l.pos}
	}
	if _, err := parseIntText(text); err == nil {
		return Token{Type: TokenInt, Value: text, Offset: start}, nil
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return Token{Type: TokenFloat, Value: text, Offset: start}, nil
	}
	return Token{Offset: start}, &LiteralError{Message: fmt.Sprintf("invalid integer %q", text), Offset: start}
}

// parseIntText parses a signed integer. Unprefixed digits are decimal even
// with leading zeros; only 0x, 0o and 0b select another base.
func parseIntText(text string) (int64, error) {
	digits := strings.TrimLeft(text, "+-")
	if len(digits) > 1 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			return strconv.ParseInt(text, 0, 64)
		}
	}
	return strconv.ParseInt(text, 10, 64)
}

// scanIdentOrKeyword scans a bare word and classifies it.
func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	word := l.scanWord()

	switch word {
	case "true", "True":
		return Token{Type: TokenTrue, Value: word, Offset: start}
	case "false", "False":
		return Token{Type: TokenFalse, Value: word, Offset: start}
	case "None":
		return Token{Type: TokenNull, Value: word, Offset: start}
	case "inf", "nan":
		return Token{Type: TokenFloat, Value: word, Offset: start}
	}
	if strings.EqualFold(word, "nothing") {
		return Token{Type: TokenNull, Value: word, Offset: start}
	}
	if typeWords[word] {
		return Token{Type: TokenTypeWord, Value: word, Offset: start}
	}
	return Token{Type: TokenIdent, Value: word, Offset: start}
}

func (l *Lexer) scanWord() string {
	start := l.pos
	for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// ============================================================
// Token Stream
// ============================================================

// TokenStream provides a stream interface over tokens.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Match returns true and advances if the current token matches.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd returns true if at end of stream.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}
