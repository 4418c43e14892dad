package gvtext

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/zclconf/go-cty/cty"
)

// ============================================================
// cty Bridge
// ============================================================
//
// Converts between go-cty values (as produced by evaluating HCL
// expressions) and Value.

// FromCty converts a known cty value to a Value. Lists and tuples keep their
// kind, objects and maps become text-keyed mappings in key order.
func FromCty(val cty.Value) (*Value, error) {
	return fromCty(val, "$", 0)
}

func fromCty(val cty.Value, path string, depth int) (*Value, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("gvtext: %s: value nested deeper than %d", path, MaxDepth)
	}
	if val.IsMarked() {
		val, _ = val.Unmark()
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("gvtext: %s: value is not known", path)
	}
	if val.IsNull() {
		return Null(), nil
	}

	ty := val.Type()
	switch {
	case ty == cty.Bool:
		return Bool(val.True()), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == big.Exact {
				return Int(n), nil
			}
		}
		f, _ := bf.Float64()
		return Float(f), nil
	case ty == cty.String:
		return Str(val.AsString()), nil
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		items := make([]*Value, 0, val.LengthInt())
		i := 0
		for it := val.ElementIterator(); it.Next(); i++ {
			_, ev := it.Element()
			item, err := fromCty(ev, path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		switch {
		case ty.IsTupleType():
			return Tuple(items...), nil
		case ty.IsSetType():
			return Set(items...), nil
		}
		return List(items...), nil
	case ty.IsMapType(), ty.IsObjectType():
		entries := make([]Entry, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			key := k.AsString()
			item, err := fromCty(ev, path+"["+strconv.Quote(key)+"]", depth+1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: Str(key), Value: item})
		}
		return Map(entries...), nil
	}
	return nil, &UnsupportedTypeError{Kind: ty.FriendlyName(), Path: path}
}

// ToCty converts v to a cty value. Homogeneous lists become cty lists and
// mixed ones tuples; mappings become objects keyed by the key text.
func ToCty(v *Value) (cty.Value, error) {
	return toCty(v, "$")
}

func toCty(v *Value, path string) (cty.Value, error) {
	switch v.Kind() {
	case KindNull:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case KindBool:
		return cty.BoolVal(v.boolVal), nil
	case KindInt:
		return cty.NumberIntVal(v.intVal), nil
	case KindFloat:
		if math.IsNaN(v.floatVal) {
			return cty.NilVal, fmt.Errorf("gvtext: %s: nan is not representable as a cty number", path)
		}
		return cty.NumberFloatVal(v.floatVal), nil
	case KindStr:
		return cty.StringVal(v.strVal), nil
	case KindList, KindTuple, KindSet:
		items := make([]cty.Value, len(v.items))
		for i, item := range v.items {
			cv, err := toCty(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = cv
		}
		return sequenceToCty(v.Kind(), items, path)
	case KindMap:
		if len(v.entries) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v.entries))
		for _, e := range v.entries {
			k := keyString(e.Key)
			cv, err := toCty(e.Value, path+"["+strconv.Quote(k)+"]")
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, &UnsupportedTypeError{Kind: v.Kind().String(), Path: path}
}

func sequenceToCty(kind ValueKind, items []cty.Value, path string) (cty.Value, error) {
	homogeneous := true
	for _, it := range items[min(1, len(items)):] {
		if !it.Type().Equals(items[0].Type()) {
			homogeneous = false
			break
		}
	}

	switch kind {
	case KindTuple:
		if len(items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(items), nil
	case KindSet:
		if len(items) == 0 {
			return cty.SetValEmpty(cty.DynamicPseudoType), nil
		}
		if !homogeneous {
			return cty.NilVal, &UnsupportedTypeError{Kind: "mixed-type set", Path: path}
		}
		return cty.SetVal(items), nil
	}
	if len(items) == 0 {
		return cty.ListValEmpty(cty.DynamicPseudoType), nil
	}
	if !homogeneous {
		return cty.TupleVal(items), nil
	}
	return cty.ListVal(items), nil
}
