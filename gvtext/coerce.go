package gvtext

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coerce walks a literal alongside a type descriptor and produces a typed
// value.
//
// Only structural mismatches fail: an array, tuple or variadic tuple needs a
// sequence and a dict needs a mapping. Everything else is lenient. A basic
// cast that cannot be performed returns the literal unchanged, tuples zip
// their fields with the literal's members and drop the surplus, and
// duplicate dict keys keep the last value.
func Coerce(v *Value, t *Type) (*Value, error) {
	c := &coercer{path: []string{"$"}}
	return c.coerce(v, t, 0)
}

type coercer struct {
	path []string
}

func (c *coercer) push(seg string) { c.path = append(c.path, seg) }
func (c *coercer) pop()            { c.path = c.path[:len(c.path)-1] }

func (c *coercer) fail(code CoercionCode, format string, args ...interface{}) *CoercionError {
	return &CoercionError{
		Path:    strings.Join(c.path, ""),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (c *coercer) coerce(v *Value, t *Type, depth int) (*Value, error) {
	if depth > MaxDepth {
		return nil, c.fail(TooDeep, "nesting deeper than %d", MaxDepth)
	}

	switch t.Kind {
	case TypeAny, TypeIndefiniteBasic:
		return v, nil

	case TypeMaybe:
		if v.IsNull() || (v.Kind() == KindStr && v.strVal == "nothing") {
			return Null(), nil
		}
		return c.coerce(v, t.Elem, depth+1)

	case TypeArray:
		if !v.Kind().IsSequence() {
			return nil, c.fail(NotASequence, "expected a sequence for %s, got %s", t, v.Kind())
		}
		items := make([]*Value, len(v.items))
		for i, item := range v.items {
			c.push("[" + strconv.Itoa(i) + "]")
			cv, err := c.coerce(item, t.Elem, depth+1)
			c.pop()
			if err != nil {
				return nil, err
			}
			items[i] = cv
		}
		return List(items...), nil

	case TypeDict:
		return c.coerceDict(v, t, depth)

	case TypeTuple:
		if !v.Kind().IsSequence() {
			return nil, c.fail(NotASequence, "expected a sequence for %s, got %s", t, v.Kind())
		}
		if len(t.Fields) == 0 {
			return Tuple(append([]*Value(nil), v.items...)...), nil
		}
		n := len(t.Fields)
		if len(v.items) < n {
			n = len(v.items)
		}
		items := make([]*Value, n)
		for i := 0; i < n; i++ {
			c.push("[" + strconv.Itoa(i) + "]")
			cv, err := c.coerce(v.items[i], t.Fields[i], depth+1)
			c.pop()
			if err != nil {
				return nil, err
			}
			items[i] = cv
		}
		return Tuple(items...), nil

	case TypeVariadicTuple:
		if !v.Kind().IsSequence() {
			return nil, c.fail(NotASequence, "expected a sequence for %s, got %s", t, v.Kind())
		}
		return Tuple(append([]*Value(nil), v.items...)...), nil

	default:
		if !t.Kind.IsBasic() {
			panic(fmt.Sprintf("gvtext: unknown type kind %d", t.Kind))
		}
		return castBasic(v, t.Kind), nil
	}
}

func (c *coercer) coerceDict(v *Value, t *Type, depth int) (*Value, error) {
	if v.Kind() != KindMap {
		return nil, c.fail(NotAMapping, "expected a mapping for %s, got %s", t, v.Kind())
	}

	var entries []Entry
	for _, e := range v.entries {
		key := castBasic(e.Key, t.Key.Kind)
		raw := e.Value

		// Variant payloads nested one level down may arrive as text.
		if t.Elem.Kind == TypeAny && raw.Kind() == KindStr {
			if parsed, err := ParseLiteral(raw.strVal); err == nil {
				raw = parsed
			}
		}

		c.push("[" + key.String() + "]")
		val, err := c.coerce(raw, t.Elem, depth+1)
		c.pop()
		if err != nil {
			return nil, err
		}
		entries = putEntry(entries, key, val)
	}
	return Map(entries...), nil
}

// ============================================================
// Basic Casts
// ============================================================

// castBasic converts v to the representation of a basic kind, or returns v
// unchanged when the conversion is not possible.
func castBasic(v *Value, kind TypeKind) *Value {
	switch {
	case kind.IsInteger():
		if n, ok := toInt(v); ok {
			return Int(n)
		}
	case kind == TypeDouble:
		if f, ok := toFloat(v); ok {
			return Float(f)
		}
	case kind == TypeBool:
		if b, ok := toBool(v); ok {
			return Bool(b)
		}
	case kind.IsStringLike():
		if s, ok := toStr(v); ok {
			return Str(s)
		}
	}
	return v
}

func toInt(v *Value) (int64, bool) {
	switch v.Kind() {
	case KindInt:
		return v.intVal, true
	case KindBool:
		if v.boolVal {
			return 1, true
		}
		return 0, true
	case KindFloat:
		f := math.Trunc(v.floatVal)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case KindStr:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toFloat(v *Value) (float64, bool) {
	switch v.Kind() {
	case KindFloat:
		return v.floatVal, true
	case KindInt:
		return float64(v.intVal), true
	case KindBool:
		if v.boolVal {
			return 1, true
		}
		return 0, true
	case KindStr:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.strVal), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v *Value) (bool, bool) {
	switch v.Kind() {
	case KindBool:
		return v.boolVal, true
	case KindNull:
		return false, true
	case KindInt:
		return v.intVal != 0, true
	case KindFloat:
		return v.floatVal != 0, true
	case KindStr:
		switch strings.TrimSpace(v.strVal) {
		case "true", "True":
			return true, true
		case "false", "False":
			return false, true
		}
	}
	return false, false
}

func toStr(v *Value) (string, bool) {
	switch v.Kind() {
	case KindStr:
		return v.strVal, true
	case KindInt:
		return strconv.FormatInt(v.intVal, 10), true
	case KindFloat:
		return formatFloat(v.floatVal), true
	case KindBool:
		return strconv.FormatBool(v.boolVal), true
	}
	return "", false
}
