package gvtext

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReadLiteral turns value text into an untyped literal. It never fails:
// text that cannot be parsed as a structured literal is returned as a text
// literal holding the trimmed input with variant markers removed.
func ReadLiteral(text string) *Value {
	stripped := strings.TrimSpace(StripMarkers(strings.TrimSpace(text)))
	v, err := ParseLiteral(stripped)
	if err != nil {
		return Str(stripped)
	}
	return v
}

// ParseLiteral parses text, which must already be free of variant markers,
// as exactly one literal expression.
func ParseLiteral(text string) (*Value, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}

	p := &literalParser{stream: NewTokenStream(tokens)}
	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	if !p.stream.AtEnd() {
		tok := p.stream.Peek()
		return nil, p.errorf(tok, "unexpected %s after value", tok.Type)
	}
	return v, nil
}

type literalParser struct {
	stream *TokenStream
}

func (p *literalParser) errorf(tok Token, format string, args ...interface{}) *LiteralError {
	return &LiteralError{Message: fmt.Sprintf(format, args...), Offset: tok.Offset}
}

// parseValue parses any value.
func (p *literalParser) parseValue(depth int) (*Value, error) {
	tok := p.stream.Peek()
	if depth > MaxDepth {
		return nil, p.errorf(tok, "nesting deeper than %d", MaxDepth)
	}

	switch tok.Type {
	case TokenNull:
		p.stream.Advance()
		return Null(), nil

	case TokenTrue:
		p.stream.Advance()
		return Bool(true), nil

	case TokenFalse:
		p.stream.Advance()
		return Bool(false), nil

	case TokenInt:
		p.stream.Advance()
		n, err := parseIntText(tok.Value)
		if err != nil {
			return nil, p.errorf(tok, "invalid integer %q", tok.Value)
		}
		return Int(n), nil

	case TokenFloat:
		p.stream.Advance()
		return Float(parseFloatToken(tok.Value)), nil

	case TokenString:
		p.stream.Advance()
		return Str(tok.Value), nil

	case TokenBytes:
		p.stream.Advance()
		items := make([]*Value, 0, len(tok.Value))
		for i := 0; i < len(tok.Value); i++ {
			items = append(items, Int(int64(tok.Value[i])))
		}
		return List(items...), nil

	case TokenAnnotation, TokenTypeWord:
		// The external signature decides the type; annotations only prefix the value.
		p.stream.Advance()
		return p.parseValue(depth)

	case TokenLBracket:
		items, err := p.parseSequence(TokenRBracket, depth)
		if err != nil {
			return nil, err
		}
		return List(items...), nil

	case TokenLParen:
		items, err := p.parseSequence(TokenRParen, depth)
		if err != nil {
			return nil, err
		}
		return Tuple(items...), nil

	case TokenLBrace:
		return p.parseBraced(depth)

	default:
		return nil, p.errorf(tok, "unexpected %s", tok)
	}
}

// parseSequence parses [v1, v2] or (v1, v2,) after checking the opener.
func (p *literalParser) parseSequence(closer TokenType, depth int) ([]*Value, error) {
	p.stream.Advance() // consume opener

	items := []*Value{}
	for {
		if p.stream.Match(closer) {
			return items, nil
		}
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		if !p.stream.Match(TokenComma) && p.stream.Peek().Type != closer {
			tok := p.stream.Peek()
			return nil, p.errorf(tok, "expected , or %s, got %s", closer, tok.Type)
		}
	}
}

// parseBraced parses a mapping {k: v, ...} or a set {a, b, ...}.
func (p *literalParser) parseBraced(depth int) (*Value, error) {
	p.stream.Advance() // consume {

	if p.stream.Match(TokenRBrace) {
		return Map(), nil
	}

	first, err := p.parseValue(depth + 1)
	if err != nil {
		return nil, err
	}
	if p.stream.Peek().Type != TokenColon {
		return p.parseSetRest(first, depth)
	}

	var entries []Entry
	key := first
	for {
		if tok := p.stream.Advance(); tok.Type != TokenColon {
			return nil, p.errorf(tok, "expected : after mapping key, got %s", tok.Type)
		}
		val, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		entries = putEntry(entries, key, val)

		if !p.stream.Match(TokenComma) {
			if tok := p.stream.Advance(); tok.Type != TokenRBrace {
				return nil, p.errorf(tok, "expected , or }, got %s", tok.Type)
			}
			return Map(entries...), nil
		}
		if p.stream.Match(TokenRBrace) {
			return Map(entries...), nil
		}
		if key, err = p.parseValue(depth + 1); err != nil {
			return nil, err
		}
	}
}

func (p *literalParser) parseSetRest(first *Value, depth int) (*Value, error) {
	items := []*Value{first}
	for {
		if !p.stream.Match(TokenComma) {
			if tok := p.stream.Advance(); tok.Type != TokenRBrace {
				return nil, p.errorf(tok, "expected , or }, got %s", tok.Type)
			}
			return Set(items...), nil
		}
		if p.stream.Match(TokenRBrace) {
			return Set(items...), nil
		}
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		if !containsValue(items, v) {
			items = append(items, v)
		}
	}
}

// putEntry stores key/val, replacing the value of an existing equal key in
// place so the first position and the last value win.
func putEntry(entries []Entry, key, val *Value) []Entry {
	for i := range entries {
		if entries[i].Key.Equal(key) {
			entries[i].Value = val
			return entries
		}
	}
	return append(entries, Entry{Key: key, Value: val})
}

func containsValue(items []*Value, v *Value) bool {
	for _, it := range items {
		if it.Equal(v) {
			return true
		}
	}
	return false
}

func parseFloatToken(s string) float64 {
	switch strings.TrimLeft(s, "+-") {
	case "inf":
		if strings.HasPrefix(s, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case "nan":
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
