package gvtext

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encode converts a value to canonical text:
//
//	null      nothing
//	bool      true / false
//	int       decimal
//	float     shortest round-trip decimal, always with '.' or an exponent
//	str       "double quoted", only \ and " escaped
//	list      [a, b]
//	tuple     (a, b), or (a,) for a single member
//	map       {k: v}, in entry order
//
// Sets have no defined member order and fail with an UnsupportedTypeError,
// as do values nested deeper than MaxDepth.
func Encode(v *Value) (string, error) {
	e := &emitter{path: []string{"$"}}
	if err := e.emit(v, 0); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// MustEncode is like Encode but panics on error.
func MustEncode(v *Value) string {
	s, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return s
}

type emitter struct {
	sb   strings.Builder
	path []string
}

func (e *emitter) emit(v *Value, depth int) error {
	if depth > MaxDepth {
		return &UnsupportedTypeError{
			Kind: fmt.Sprintf("%s nested deeper than %d", v.Kind(), MaxDepth),
			Path: strings.Join(e.path, ""),
		}
	}

	switch v.Kind() {
	case KindNull:
		e.sb.WriteString("nothing")

	case KindBool:
		e.sb.WriteString(strconv.FormatBool(v.boolVal))

	case KindInt:
		e.sb.WriteString(strconv.FormatInt(v.intVal, 10))

	case KindFloat:
		e.sb.WriteString(formatFloat(v.floatVal))

	case KindStr:
		e.sb.WriteString(quoteString(v.strVal))

	case KindList:
		e.sb.WriteByte('[')
		if err := e.emitItems(v.items, depth); err != nil {
			return err
		}
		e.sb.WriteByte(']')

	case KindTuple:
		e.sb.WriteByte('(')
		if err := e.emitItems(v.items, depth); err != nil {
			return err
		}
		if len(v.items) == 1 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteByte(')')

	case KindMap:
		e.sb.WriteByte('{')
		for i, entry := range v.entries {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			if err := e.emit(entry.Key, depth+1); err != nil {
				return err
			}
			e.sb.WriteString(": ")
			e.path = append(e.path, "["+e.keyText(entry.Key)+"]")
			err := e.emit(entry.Value, depth+1)
			e.path = e.path[:len(e.path)-1]
			if err != nil {
				return err
			}
		}
		e.sb.WriteByte('}')

	default:
		return &UnsupportedTypeError{Kind: v.Kind().String(), Path: strings.Join(e.path, "")}
	}
	return nil
}

func (e *emitter) emitItems(items []*Value, depth int) error {
	for i, item := range items {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		e.path = append(e.path, "["+strconv.Itoa(i)+"]")
		err := e.emit(item, depth+1)
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) keyText(k *Value) string {
	if k.Kind() == KindStr {
		return quoteString(k.strVal)
	}
	return k.String()
}

// quoteString double-quotes s, escaping only backslash and double quote.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// formatFloat returns the shortest representation of f that reads back as
// the same float and never as an integer.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	var s string
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
