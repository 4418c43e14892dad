package gvtext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromCty(t *testing.T) {
	tests := []struct {
		name     string
		in       cty.Value
		expected *Value
	}{
		{"null", cty.NullVal(cty.String), Null()},
		{"bool", cty.True, Bool(true)},
		{"int", cty.NumberIntVal(-4), Int(-4)},
		{"float", cty.NumberFloatVal(0.25), Float(0.25)},
		{"string", cty.StringVal("x"), Str("x")},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), List(Str("a"), Str("b"))},
		{"empty list", cty.ListValEmpty(cty.String), List()},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), Tuple(Str("a"), Int(1))},
		{"set", cty.SetVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}), Set(Int(1), Int(2))},
		{"object", cty.ObjectVal(map[string]cty.Value{
			"b": cty.NumberIntVal(2),
			"a": cty.True,
		}), Map(
			Entry{Key: Str("a"), Value: Bool(true)},
			Entry{Key: Str("b"), Value: Int(2)},
		)},
		{"map", cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), Map(
			Entry{Key: Str("k"), Value: Str("v")},
		)},
		{"marked", cty.StringVal("secret").Mark("sensitive"), Str("secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCty(tt.in)
			require.NoError(t, err)
			require.Truef(t, got.Equal(tt.expected), "FromCty = %s, want %s", got, tt.expected)
		})
	}
}

func TestFromCty_Unknown(t *testing.T) {
	_, err := FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)

	_, err = FromCty(cty.ListVal([]cty.Value{cty.UnknownVal(cty.Number)}))
	require.ErrorContains(t, err, "$[0]")
}

func TestToCty(t *testing.T) {
	got, err := ToCty(Map(
		Entry{Key: Str("name"), Value: Str("x")},
		Entry{Key: Str("sizes"), Value: List(Int(1), Int(2))},
		Entry{Key: Str("mixed"), Value: List(Int(1), Str("a"))},
		Entry{Key: Str("pair"), Value: Tuple(Bool(true), Float(1.5))},
		Entry{Key: Str("none"), Value: Null()},
		Entry{Key: Str("empty"), Value: List()},
	))
	require.NoError(t, err)
	require.True(t, got.Type().IsObjectType())
	require.Equal(t, "x", got.GetAttr("name").AsString())
	require.True(t, got.GetAttr("sizes").Type().IsListType())
	require.True(t, got.GetAttr("mixed").Type().IsTupleType())
	require.True(t, got.GetAttr("pair").Type().IsTupleType())
	require.True(t, got.GetAttr("none").IsNull())
	require.Equal(t, 0, got.GetAttr("empty").LengthInt())

	set, err := ToCty(Set(Int(1), Int(2)))
	require.NoError(t, err)
	require.True(t, set.Type().IsSetType())

	_, err = ToCty(Set(Int(1), Str("a")))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ToCty(Float(math.NaN()))
	require.Error(t, err)
}

func TestCty_RoundTrip(t *testing.T) {
	v := Map(
		Entry{Key: Str("a"), Value: List(Int(1), Int(2))},
		Entry{Key: Str("b"), Value: Tuple(Str("x"), Float(0.5))},
	)
	cv, err := ToCty(v)
	require.NoError(t, err)

	back, err := FromCty(cv)
	require.NoError(t, err)
	require.Truef(t, back.Equal(v), "round trip = %s, want %s", back, v)
}
