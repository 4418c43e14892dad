// Package gvtext implements a codec for GVariant-style type signatures and
// their human readable value text.
//
// Three pieces make up the codec:
//   - Signature parser: "a{sv}" → *Type descriptor tree
//   - Literal reader: value text → untyped *Value literal
//   - Coercer: literal + *Type → typed *Value
//
// and the serializer turns a typed *Value back into canonical text.
//
// # Signatures
//
//	b y n q i u x t h d s o g   basic kinds (bool, integers, double, strings)
//	?                           any basic kind, resolved from the literal
//	v *                         any value
//	r                           tuple of any length and member types
//	m<T>                        maybe T
//	a<T>                        array of T
//	a{<K><V>}                   dict with basic key K
//	(<T1><T2>...)               tuple, possibly empty
//
// # Value Text
//
//	Null:     nothing
//	Bool:     true / false
//	Number:   42, -0x1f, 1.5, 2e10, inf, nan
//	String:   'single' or "double" quoted
//	Array:    [1, 2, 3]
//	Tuple:    ('a', 1), (1,)
//	Mapping:  {'key': <value>}
//
// Angle brackets mark variant payloads and are dropped outside quotes.
// GVariant type annotations such as @as [] and uint32 7 are accepted and
// ignored, since the signature given to Decode decides the type.
//
// # Example
//
//	v, err := gvtext.Decode("[{'position': <0>}]", "aa{sv}")
//	if err != nil {
//		return err
//	}
//	text, _ := gvtext.Encode(v) // [{"position": 0}]
//
// # Leniency
//
// Text that does not parse structurally is read as a plain string. Basic
// casts that cannot be performed leave the literal unchanged, tuples are
// zipped positionally with their members and truncated, and duplicate keys
// keep the last value. A bool accepts numbers, nothing and true/false text,
// and a string only scalars; other values, such as 'yes' under b or nothing
// under s, pass through as they are. Unprefixed integers are decimal even
// with leading zeros, so 010 reads as 10. Only structural mismatches for
// arrays, tuples and dicts fail with a CoercionError.
package gvtext
