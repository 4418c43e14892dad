package gvtext

import (
	"fmt"
	"strings"
)

// MaxDepth bounds the nesting of signatures, value text and coercion.
const MaxDepth = 1024

// TypeKind identifies a type descriptor variant.
type TypeKind uint8

const (
	// Basic kinds.
	TypeBool       TypeKind = iota // b
	TypeByte                       // y
	TypeInt16                      // n
	TypeUInt16                     // q
	TypeInt32                      // i
	TypeUInt32                     // u
	TypeInt64                      // x
	TypeUInt64                     // t
	TypeHandle                     // h
	TypeDouble                     // d
	TypeString                     // s
	TypeObjectPath                 // o
	TypeSignature                  // g

	// Indefinite and composite kinds.
	TypeIndefiniteBasic // ?
	TypeAny             // v or *
	TypeMaybe           // m<elem>
	TypeArray           // a<elem>
	TypeDict            // a{<key><elem>}
	TypeTuple           // (<fields>...)
	TypeVariadicTuple   // r
)

// basicChars holds the signature code of each basic kind, indexed by kind.
const basicChars = "bynqiuxthdsog"

// String returns the kind name.
func (k TypeKind) String() string {
	switch k {
	case TypeBool:
		return "bool"
	case TypeByte:
		return "byte"
	case TypeInt16:
		return "int16"
	case TypeUInt16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUInt32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUInt64:
		return "uint64"
	case TypeHandle:
		return "handle"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeObjectPath:
		return "objectpath"
	case TypeSignature:
		return "signature"
	case TypeIndefiniteBasic:
		return "basic"
	case TypeAny:
		return "any"
	case TypeMaybe:
		return "maybe"
	case TypeArray:
		return "array"
	case TypeDict:
		return "dict"
	case TypeTuple:
		return "tuple"
	case TypeVariadicTuple:
		return "tuple..."
	default:
		return "unknown"
	}
}

// IsBasic reports whether k is one of the fixed primitive kinds.
func (k TypeKind) IsBasic() bool {
	return k <= TypeSignature
}

// IsInteger reports whether k is represented as an integer.
func (k TypeKind) IsInteger() bool {
	switch k {
	case TypeByte, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32, TypeInt64, TypeUInt64, TypeHandle:
		return true
	}
	return false
}

// IsStringLike reports whether k is represented as text.
func (k TypeKind) IsStringLike() bool {
	return k == TypeString || k == TypeObjectPath || k == TypeSignature
}

// Type is an immutable type descriptor built from a signature.
type Type struct {
	Kind   TypeKind
	Key    *Type   // For Kind == TypeDict (always a basic kind)
	Elem   *Type   // For TypeMaybe, TypeArray, and the value of TypeDict
	Fields []*Type // For Kind == TypeTuple
}

// Basic returns the descriptor of a basic kind.
func Basic(kind TypeKind) *Type {
	return &Type{Kind: kind}
}

// MaybeOf returns a maybe descriptor.
func MaybeOf(elem *Type) *Type {
	return &Type{Kind: TypeMaybe, Elem: elem}
}

// ArrayOf returns an array descriptor.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: TypeArray, Elem: elem}
}

// DictOf returns a dict descriptor. It panics if key is not basic.
func DictOf(key, elem *Type) *Type {
	if !key.Kind.IsBasic() {
		panic("gvtext: dict key must be a basic type, got " + key.Kind.String())
	}
	return &Type{Kind: TypeDict, Key: key, Elem: elem}
}

// TupleOf returns a fixed tuple descriptor. Zero fields is a valid empty tuple.
func TupleOf(fields ...*Type) *Type {
	if fields == nil {
		fields = []*Type{}
	}
	return &Type{Kind: TypeTuple, Fields: fields}
}

// String returns the canonical signature of t.
func (t *Type) String() string {
	var sb strings.Builder
	t.writeSignature(&sb)
	return sb.String()
}

func (t *Type) writeSignature(sb *strings.Builder) {
	switch t.Kind {
	case TypeIndefiniteBasic:
		sb.WriteByte('?')
	case TypeAny:
		sb.WriteByte('v')
	case TypeVariadicTuple:
		sb.WriteByte('r')
	case TypeMaybe:
		sb.WriteByte('m')
		t.Elem.writeSignature(sb)
	case TypeArray:
		sb.WriteByte('a')
		t.Elem.writeSignature(sb)
	case TypeDict:
		sb.WriteString("a{")
		t.Key.writeSignature(sb)
		t.Elem.writeSignature(sb)
		sb.WriteByte('}')
	case TypeTuple:
		sb.WriteByte('(')
		for _, f := range t.Fields {
			f.writeSignature(sb)
		}
		sb.WriteByte(')')
	default:
		if !t.Kind.IsBasic() {
			panic(fmt.Sprintf("gvtext: unknown type kind %d", t.Kind))
		}
		sb.WriteByte(basicChars[t.Kind])
	}
}

// Equal reports whether two descriptors describe the same type.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeMaybe, TypeArray:
		return t.Elem.Equal(o.Elem)
	case TypeDict:
		return t.Key.Equal(o.Key) && t.Elem.Equal(o.Elem)
	case TypeTuple:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if !t.Fields[i].Equal(o.Fields[i]) {
				return false
			}
		}
	}
	return true
}

// Describe returns an indented, human readable tree of t.
func (t *Type) Describe() string {
	var sb strings.Builder
	t.describe(&sb, "", 0)
	return sb.String()
}

func (t *Type) describe(sb *strings.Builder, label string, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(label)
	sb.WriteString(t.Kind.String())
	sb.WriteByte('\n')
	switch t.Kind {
	case TypeMaybe, TypeArray:
		t.Elem.describe(sb, "", depth+1)
	case TypeDict:
		t.Key.describe(sb, "key: ", depth+1)
		t.Elem.describe(sb, "value: ", depth+1)
	case TypeTuple:
		for i, f := range t.Fields {
			f.describe(sb, fmt.Sprintf("%d: ", i), depth+1)
		}
	}
}

// ============================================================
// Signature Parser
// ============================================================

// ParseSignature parses a type signature into a descriptor. The whole input
// must form exactly one complete type.
func ParseSignature(sig string) (*Type, error) {
	p := &sigParser{sig: sig}
	if sig == "" {
		return nil, p.errorf("empty signature")
	}
	t, err := p.parseType(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.sig) {
		return nil, p.errorf("trailing characters %q", p.sig[p.pos:])
	}
	return t, nil
}

// MustParseSignature is like ParseSignature but panics on error.
func MustParseSignature(sig string) *Type {
	t, err := ParseSignature(sig)
	if err != nil {
		panic(err)
	}
	return t
}

type sigParser struct {
	sig string
	pos int
}

func (p *sigParser) errorf(format string, args ...interface{}) *SignatureError {
	return &SignatureError{Signature: p.sig, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *sigParser) parseType(depth int) (*Type, error) {
	if depth > MaxDepth {
		return nil, p.errorf("nesting deeper than %d", MaxDepth)
	}
	if p.pos >= len(p.sig) {
		return nil, p.errorf("unexpected end of signature")
	}

	ch := p.sig[p.pos]
	if i := strings.IndexByte(basicChars, ch); i >= 0 {
		p.pos++
		return &Type{Kind: TypeKind(i)}, nil
	}

	switch ch {
	case '?':
		p.pos++
		return &Type{Kind: TypeIndefiniteBasic}, nil
	case 'v', '*':
		p.pos++
		return &Type{Kind: TypeAny}, nil
	case 'r':
		p.pos++
		return &Type{Kind: TypeVariadicTuple}, nil
	case 'm':
		p.pos++
		elem, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		return MaybeOf(elem), nil
	case 'a':
		p.pos++
		if p.pos < len(p.sig) && p.sig[p.pos] == '{' {
			return p.parseDictEntry(depth + 1)
		}
		elem, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case '(':
		return p.parseTuple(depth + 1)
	case '{':
		return nil, p.errorf("dict entry outside of array")
	default:
		return nil, p.errorf("unknown type code %q", ch)
	}
}

// parseTuple parses (<fields>...) starting at the opening paren.
func (p *sigParser) parseTuple(depth int) (*Type, error) {
	p.pos++ // consume (

	fields := []*Type{}
	for {
		if p.pos >= len(p.sig) {
			return nil, p.errorf("unterminated tuple")
		}
		if p.sig[p.pos] == ')' {
			p.pos++
			return TupleOf(fields...), nil
		}
		f, err := p.parseType(depth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
}

// parseDictEntry parses {<key><value>} starting at the opening brace.
func (p *sigParser) parseDictEntry(depth int) (*Type, error) {
	p.pos++ // consume {

	keyPos := p.pos
	key, err := p.parseType(depth)
	if err != nil {
		return nil, err
	}
	if !key.Kind.IsBasic() {
		return nil, &SignatureError{
			Signature: p.sig,
			Offset:    keyPos,
			Message:   fmt.Sprintf("dict key must be a basic type, got %s", key.Kind),
		}
	}

	if p.pos < len(p.sig) && p.sig[p.pos] == '}' {
		return nil, p.errorf("missing dict value type")
	}
	elem, err := p.parseType(depth)
	if err != nil {
		return nil, err
	}

	if p.pos >= len(p.sig) {
		return nil, p.errorf("unterminated dict entry")
	}
	if p.sig[p.pos] != '}' {
		return nil, p.errorf("expected '}', got %q", p.sig[p.pos])
	}
	p.pos++
	return &Type{Kind: TypeDict, Key: key, Elem: elem}, nil
}
