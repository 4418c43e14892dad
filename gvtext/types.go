package gvtext

import (
	"fmt"
	"math"
)

// ValueKind represents the shape of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList  // [a, b]
	KindTuple // (a, b)
	KindMap   // {k: v}
	KindSet   // {a, b}; readable but has no canonical text form
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// IsSequence reports whether values of this kind are ordered sequences.
func (k ValueKind) IsSequence() bool {
	return k == KindList || k == KindTuple
}

// Value is a literal read from text or a typed value produced by Coerce.
// Both share one representation; only the guarantees differ.
type Value struct {
	kind ValueKind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Container values
	items   []*Value // List, Tuple, Set
	entries []Entry  // Map
}

// Entry is a key/value pair of a Map value.
type Entry struct {
	Key   *Value
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a floating point value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a text value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// List creates an ordered, array-like sequence.
func List(items ...*Value) *Value {
	return &Value{kind: KindList, items: items}
}

// Tuple creates an ordered, tuple-like sequence.
func Tuple(items ...*Value) *Value {
	return &Value{kind: KindTuple, items: items}
}

// Map creates a keyed mapping. Entry order is kept as given.
func Map(entries ...Entry) *Value {
	return &Value{kind: KindMap, entries: entries}
}

// Set creates an unordered collection.
func Set(items ...*Value) *Value {
	return &Value{kind: KindSet, items: items}
}

// StrMap creates a mapping with text keys, in the order given by keys.
func StrMap(keys []string, values map[string]*Value) *Value {
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: Str(k), Value: values[k]})
	}
	return Map(entries...)
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil Value is null.
func (v *Value) Kind() ValueKind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("gvtext: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v.Kind() != KindInt {
		return 0, fmt.Errorf("gvtext: expected int, got %s", v.Kind())
	}
	return v.intVal, nil
}

// AsFloat returns the floating point value.
func (v *Value) AsFloat() (float64, error) {
	if v.Kind() != KindFloat {
		return 0, fmt.Errorf("gvtext: expected float, got %s", v.Kind())
	}
	return v.floatVal, nil
}

// AsStr returns the text value.
func (v *Value) AsStr() (string, error) {
	if v.Kind() != KindStr {
		return "", fmt.Errorf("gvtext: expected str, got %s", v.Kind())
	}
	return v.strVal, nil
}

// Items returns the members of a list, tuple or set.
func (v *Value) Items() ([]*Value, error) {
	switch v.Kind() {
	case KindList, KindTuple, KindSet:
		return v.items, nil
	}
	return nil, fmt.Errorf("gvtext: expected sequence, got %s", v.Kind())
}

// Entries returns the entries of a map.
func (v *Value) Entries() ([]Entry, error) {
	if v.Kind() != KindMap {
		return nil, fmt.Errorf("gvtext: expected map, got %s", v.Kind())
	}
	return v.entries, nil
}

// Len returns the number of members of a container, or 0 for scalars.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindList, KindTuple, KindSet:
		return len(v.items)
	case KindMap:
		return len(v.entries)
	default:
		return 0
	}
}

// Index returns the i-th member of a list or tuple.
func (v *Value) Index(i int) (*Value, error) {
	if !v.Kind().IsSequence() {
		return nil, fmt.Errorf("gvtext: not a sequence")
	}
	if i < 0 || i >= len(v.items) {
		return nil, fmt.Errorf("gvtext: index %d out of bounds (len=%d)", i, len(v.items))
	}
	return v.items[i], nil
}

// Get returns the value stored under a text key in a map, or nil.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindMap {
		return nil
	}
	for _, e := range v.entries {
		if e.Key.Kind() == KindStr && e.Key.strVal == key {
			return e.Value
		}
	}
	return nil
}

// Lookup returns the value stored under key in a map, comparing with Equal.
func (v *Value) Lookup(key *Value) (*Value, bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	for _, e := range v.entries {
		if e.Key.Equal(key) {
			return e.Value, true
		}
	}
	return nil, false
}

// ============================================================
// Equality
// ============================================================

// Equal reports whether two values have the same kind and content.
// Map comparison is order-sensitive; set comparison is not.
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		if math.IsNaN(v.floatVal) && math.IsNaN(o.floatVal) {
			return true
		}
		return v.floatVal == o.floatVal
	case KindStr:
		return v.strVal == o.strVal
	case KindList, KindTuple:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if !v.entries[i].Key.Equal(o.entries[i].Key) || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	case KindSet:
		if len(v.items) != len(o.items) {
			return false
		}
		used := make([]bool, len(o.items))
	outer:
		for _, a := range v.items {
			for j, b := range o.items {
				if !used[j] && a.Equal(b) {
					used[j] = true
					continue outer
				}
			}
			return false
		}
		return true
	}
	return false
}

// String returns the canonical text of v, or a diagnostic form when v has
// no canonical text.
func (v *Value) String() string {
	s, err := Encode(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.Kind(), err)
	}
	return s
}
