package gvtext

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrInvalidSignature = errors.New("gvtext: invalid signature")
	ErrCoercion         = errors.New("gvtext: coercion failed")
	ErrUnsupportedType  = errors.New("gvtext: unsupported type")
)

// SignatureError reports a grammar violation in a type signature.
type SignatureError struct {
	Signature string
	Offset    int // Byte offset of the offending character
	Message   string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("gvtext: invalid signature %q: %s at offset %d", e.Signature, e.Message, e.Offset)
}

// Is reports whether target is ErrInvalidSignature.
func (e *SignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// CoercionCode classifies a coercion failure.
type CoercionCode string

const (
	NotASequence CoercionCode = "NOT_A_SEQUENCE"
	NotAMapping  CoercionCode = "NOT_A_MAPPING"
	TooDeep      CoercionCode = "TOO_DEEP"
)

// CoercionError reports a literal whose shape does not match the structure
// required by an array, dict or tuple type.
type CoercionError struct {
	Path    string // JSON-path style location, e.g. $[0]["key"]
	Code    CoercionCode
	Message string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("gvtext: %s: %s", e.Path, e.Message)
}

// Is reports whether target is ErrCoercion.
func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// UnsupportedTypeError reports a value with no canonical text form.
type UnsupportedTypeError struct {
	Kind string // Value kind or Go type name
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("gvtext: %s: %s has no text form", e.Path, e.Kind)
	}
	return fmt.Sprintf("gvtext: %s has no text form", e.Kind)
}

// Is reports whether target is ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// LiteralError reports a structural parse failure in value text. ReadLiteral
// never returns it; it recovers by falling back to a text literal.
type LiteralError struct {
	Message string
	Offset  int
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("gvtext: %s at offset %d", e.Message, e.Offset)
}
