package gvtext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON and Value. Object member order is preserved in both
// directions. Tuples become JSON arrays, so JSON input is usually coerced
// against a signature afterwards (see DecodeJSON).

// ToJSON converts v to JSON. Mapping keys that are not text are rendered as
// canonical text. Sets and non-finite floats fail.
func ToJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, "$"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *Value, path string) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.intVal, 10))
	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return fmt.Errorf("gvtext: %s: %s is not representable in JSON", path, formatFloat(v.floatVal))
		}
		buf.WriteString(formatFloat(v.floatVal))
	case KindStr:
		b, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList, KindTuple:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k := keyString(e.Key)
			b, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value, path+"["+strconv.Quote(k)+"]"); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return &UnsupportedTypeError{Kind: v.Kind().String(), Path: path}
	}
	return nil
}

// FromJSON converts a JSON document to a Value. Numbers without a fraction
// or exponent that fit in 64 bits become integers.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSON(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("gvtext: JSON parse error: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("gvtext: JSON parse error: trailing data after value")
	}
	return v, nil
}

// DecodeJSON reads a JSON document as a value of type t.
func DecodeJSON(data []byte, t *Type) (*Value, error) {
	v, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return Coerce(v, t)
}

func readJSON(dec *json.Decoder, depth int) (*Value, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", MaxDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			items := []*Value{}
			for dec.More() {
				item, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return List(items...), nil
		case '{':
			var entries []Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				entries = putEntry(entries, Str(key), val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return Map(entries...), nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
