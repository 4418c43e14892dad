package gvtext

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Decode reads text as a value of the type described by signature.
func Decode(text, signature string) (*Value, error) {
	t, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return DecodeType(text, t)
}

// DecodeType reads text as a value of type t.
func DecodeType(text string, t *Type) (*Value, error) {
	return Coerce(ReadLiteral(text), t)
}

// Fingerprint returns the hex SHA-256 of the canonical text of v.
func Fingerprint(v *Value) (string, error) {
	s, err := Encode(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// ============================================================
// Native Go Values
// ============================================================

// FromAny converts a native Go value to a Value.
//
// Slices and arrays become lists, maps become mappings sorted by key, and
// maps with struct{} values become sets. Structs, channels, functions and
// complex numbers fail with an UnsupportedTypeError.
func FromAny(x interface{}) (*Value, error) {
	return fromReflect(reflect.ValueOf(x), "$")
}

func fromReflect(rv reflect.Value, path string) (*Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}
	if v, ok := rv.Interface().(*Value); ok {
		if v == nil {
			return Null(), nil
		}
		return v, nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return Int(int64(u)), nil
		}
		return Float(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromReflect(rv.Elem(), path)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List(), nil
		}
		items := make([]*Value, rv.Len())
		for i := range items {
			v, err := fromReflect(rv.Index(i), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return List(items...), nil
	case reflect.Map:
		return fromReflectMap(rv, path)
	}
	return nil, &UnsupportedTypeError{Kind: rv.Type().String(), Path: path}
}

func fromReflectMap(rv reflect.Value, path string) (*Value, error) {
	isSet := rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().Size() == 0

	keys := make([]*Value, 0, rv.Len())
	vals := make(map[*Value]*Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := fromReflect(iter.Key(), path)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		if isSet {
			continue
		}
		v, err := fromReflect(iter.Value(), path+"["+k.String()+"]")
		if err != nil {
			return nil, err
		}
		vals[k] = v
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	if isSet {
		return Set(keys...), nil
	}
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: vals[k]}
	}
	return Map(entries...), nil
}

// lessKey orders scalar keys: numbers numerically, text lexically, and
// mixed kinds by kind.
func lessKey(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	switch a.Kind() {
	case KindInt:
		return a.intVal < b.intVal
	case KindFloat:
		return a.floatVal < b.floatVal
	case KindStr:
		return a.strVal < b.strVal
	case KindBool:
		return !a.boolVal && b.boolVal
	}
	return a.String() < b.String()
}

// Interface converts v to plain Go values: nil, bool, int64, float64,
// string, []interface{} for lists, tuples and sets, and
// map[string]interface{} for mappings. Non-text mapping keys are rendered
// as canonical text.
func (v *Value) Interface() interface{} {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return v.intVal
	case KindFloat:
		return v.floatVal
	case KindStr:
		return v.strVal
	case KindList, KindTuple, KindSet:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.entries))
		for _, e := range v.entries {
			out[keyString(e.Key)] = e.Value.Interface()
		}
		return out
	}
	return nil
}

// keyString renders a mapping key as a plain string.
func keyString(k *Value) string {
	if k.Kind() == KindStr {
		return k.strVal
	}
	return k.String()
}
