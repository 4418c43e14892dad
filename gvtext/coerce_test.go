package gvtext

import (
	"errors"
	"math"
	"testing"
)

// ============================================================
// Decode Tests
// ============================================================

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sig      string
		expected *Value
	}{
		{"int array", "[1, 2, 3]", "ai", List(Int(1), Int(2), Int(3))},
		{"empty array", "[]", "as", List()},
		{"tuple", "('a', 1)", "(si)", Tuple(Str("a"), Int(1))},
		{"variant int", "<42>", "v", Int(42)},
		{"variant star", "<'x'>", "*", Str("x")},
		{"indefinite basic", "'hi'", "?", Str("hi")},
		{"maybe present", "5", "mi", Int(5)},
		{"maybe cast", "'5'", "mi", Int(5)},
		{"array of tuples", "[('a', 'b'), ('c', 'd')]", "a(ss)", List(
			Tuple(Str("a"), Str("b")),
			Tuple(Str("c"), Str("d")),
		)},
		{"list as tuple", "[1, 'a']", "(is)", Tuple(Int(1), Str("a"))},
		{"tuple as array", "(1, 2)", "ai", List(Int(1), Int(2))},
		{"dict", "{'a': 1, 'b': 2}", "a{si}", Map(
			Entry{Key: Str("a"), Value: Int(1)},
			Entry{Key: Str("b"), Value: Int(2)},
		)},
		{"dict int keys", "{'1': 'x', 2: 'y'}", "a{is}", Map(
			Entry{Key: Int(1), Value: Str("x")},
			Entry{Key: Int(2), Value: Str("y")},
		)},
		{"plain text", "hello world", "s", Str("hello world")},
		{"plain text array fallback", "[hello]", "s", Str("[hello]")},
		{"quoted markers kept", "['<hello>']", "as", List(Str("<hello>"))},
		{"annotated", "@a{sv} {'k': <uint32 7>}", "a{sv}", Map(Entry{Key: Str("k"), Value: Int(7)})},
		{"bytestring", "b'hi'", "ay", List(Int(104), Int(105))},
		{"leading zero int", "010", "i", Int(10)},
		{"leading zero variant", "08", "v", Int(8)},
		{"negative leading zero", "-010", "v", Int(-10)},
		{"leading zeros in array", "[007, 09]", "ai", List(Int(7), Int(9))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.text, tt.sig)
			if err != nil {
				t.Fatalf("Decode(%q, %q) failed: %v", tt.text, tt.sig, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Decode(%q, %q) = %s, want %s", tt.text, tt.sig, got, tt.expected)
			}
		})
	}
}

func TestDecode_InvalidSignature(t *testing.T) {
	for _, sig := range []string{"z", "a", "(si", "{{si}}", "a{s}", "()tuple"} {
		if _, err := Decode("[]", sig); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Decode with %q: expected ErrInvalidSignature, got %v", sig, err)
		}
	}
}

func TestDecode_Nothing(t *testing.T) {
	for _, inner := range []string{"b", "i", "t", "d", "s", "o", "v", "as", "a{sv}", "(si)", "mi", "r"} {
		t.Run(inner, func(t *testing.T) {
			for _, text := range []string{"nothing", "Nothing", "  NOTHING ", "<nothing>", "'nothing'"} {
				got, err := Decode(text, "m"+inner)
				if err != nil {
					t.Fatalf("Decode(%q) failed: %v", text, err)
				}
				if !got.IsNull() {
					t.Errorf("Decode(%q, m%s) = %s, want nothing", text, inner, got)
				}
			}
		})
	}
}

// ============================================================
// Coercion Error Tests
// ============================================================

func TestCoerce_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		sig  string
		code CoercionCode
		path string
	}{
		{"scalar as array", "1", "ai", NotASequence, "$"},
		{"text as array", "hello", "as", NotASequence, "$"},
		{"nested element", "[[1], 2]", "aai", NotASequence, "$[1]"},
		{"mapping as array", "{'a': 1}", "as", NotASequence, "$"},
		{"set as array", "{1, 2}", "ai", NotASequence, "$"},
		{"text as tuple", "hello", "(si)", NotASequence, "$"},
		{"scalar as variadic tuple", "5", "r", NotASequence, "$"},
		{"list as dict", "[1]", "a{si}", NotAMapping, "$"},
		{"pairs as dict", "[('a', 'b')]", "a{ss}", NotAMapping, "$"},
		{"dict value", "{'a': 5}", "a{sai}", NotASequence, `$["a"]`},
		{"int key path", "{1: 5}", "a{iai}", NotASequence, "$[1]"},
		{"tuple member", "('a', 5)", "(sas)", NotASequence, "$[1]"},
		{"maybe inner", "[5]", "maai", NotASequence, "$[0]"},
		{"deep", "[{'k': [1, 'x']}]", "aa{saas}", NotASequence, `$[0]["k"][0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text, tt.sig)
			if !errors.Is(err, ErrCoercion) {
				t.Fatalf("expected ErrCoercion, got %v", err)
			}
			var cerr *CoercionError
			if !errors.As(err, &cerr) {
				t.Fatalf("error %T is not a *CoercionError", err)
			}
			if cerr.Code != tt.code {
				t.Errorf("code = %s, want %s", cerr.Code, tt.code)
			}
			if cerr.Path != tt.path {
				t.Errorf("path = %s, want %s", cerr.Path, tt.path)
			}
		})
	}
}

func TestCoerce_TooDeep(t *testing.T) {
	typ := Basic(TypeInt32)
	v := Int(1)
	for i := 0; i < MaxDepth+2; i++ {
		typ = ArrayOf(typ)
		v = List(v)
	}
	_, err := Coerce(v, typ)
	var cerr *CoercionError
	if !errors.As(err, &cerr) || cerr.Code != TooDeep {
		t.Errorf("expected TOO_DEEP coercion error, got %v", err)
	}
}

// ============================================================
// Leniency Tests
// ============================================================

func TestCoerce_BasicCasts(t *testing.T) {
	tests := []struct {
		name     string
		input    *Value
		sig      string
		expected *Value
	}{
		// Integer kinds
		{"int from text", Str("42"), "i", Int(42)},
		{"int from padded text", Str(" 7 "), "x", Int(7)},
		{"int from float", Float(3.9), "i", Int(3)},
		{"int from negative float", Float(-3.9), "n", Int(-3)},
		{"int from bool", Bool(true), "u", Int(1)},
		{"handle from text", Str("3"), "h", Int(3)},
		{"byte keeps range", Str("300"), "y", Int(300)},
		{"int from word", Str("abc"), "i", Str("abc")},
		{"int from nan", Float(math.NaN()), "t", Float(math.NaN())},
		{"int from huge float", Float(1e20), "x", Float(1e20)},
		{"int from mapping", Map(), "i", Map()},
		{"int from null", Null(), "i", Null()},

		// Double
		{"double from int", Int(2), "d", Float(2)},
		{"double from text", Str("1.5"), "d", Float(1.5)},
		{"double from word", Str("x"), "d", Str("x")},
		{"double from list", List(Int(1)), "d", List(Int(1))},

		// Bool
		{"bool from null", Null(), "b", Bool(false)},
		{"bool from zero", Int(0), "b", Bool(false)},
		{"bool from float", Float(0.5), "b", Bool(true)},
		{"bool from text", Str("True"), "b", Bool(true)},
		{"bool from false text", Str("false"), "b", Bool(false)},
		{"bool from word", Str("yes"), "b", Str("yes")},
		{"bool from list", List(), "b", List()},

		// String-like
		{"string from int", Int(5), "s", Str("5")},
		{"string from float", Float(1.5), "s", Str("1.5")},
		{"string from whole float", Float(2), "s", Str("2.0")},
		{"string from bool", Bool(true), "s", Str("true")},
		{"object path from int", Int(1), "o", Str("1")},
		{"signature from text", Str("a{sv}"), "g", Str("a{sv}")},
		{"string from null", Null(), "s", Null()},
		{"string from list", List(Int(1)), "s", List(Int(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.input, MustParseSignature(tt.sig))
			if err != nil {
				t.Fatalf("Coerce failed: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Coerce(%s, %s) = %s (%s), want %s (%s)",
					tt.input, tt.sig, got, got.Kind(), tt.expected, tt.expected.Kind())
			}
		})
	}
}

func TestCoerce_Tuples(t *testing.T) {
	tests := []struct {
		text     string
		sig      string
		expected *Value
	}{
		{"(1, 2, 3)", "(ii)", Tuple(Int(1), Int(2))},
		{"(1,)", "(is)", Tuple(Int(1))},
		{"[]", "(si)", Tuple()},
		{"()", "()", Tuple()},
		{"(1, 'a')", "()", Tuple(Int(1), Str("a"))},
		{"[1, 'x', [true]]", "r", Tuple(Int(1), Str("x"), List(Bool(true)))},
		{"('5', '6')", "r", Tuple(Str("5"), Str("6"))},
		{"('5', '6')", "(ii)", Tuple(Int(5), Int(6))},
	}

	for _, tt := range tests {
		t.Run(tt.text+" "+tt.sig, func(t *testing.T) {
			got, err := Decode(tt.text, tt.sig)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCoerce_DictDuplicateKeys(t *testing.T) {
	tests := []struct {
		text     string
		sig      string
		expected *Value
	}{
		// '1' and 1 collapse to one key once the key cast has run.
		{"{'1': 'x', 'b': 'y', 1: 'z'}", "a{ss}", Map(
			Entry{Key: Str("1"), Value: Str("z")},
			Entry{Key: Str("b"), Value: Str("y")},
		)},
		{"{'1': 'x', 2: 'y', 1: 'z'}", "a{is}", Map(
			Entry{Key: Int(1), Value: Str("z")},
			Entry{Key: Int(2), Value: Str("y")},
		)},
		{"{'a': 1, 'a': 2, 'a': 3}", "a{si}", Map(
			Entry{Key: Str("a"), Value: Int(3)},
		)},
	}

	for _, tt := range tests {
		got, err := Decode(tt.text, tt.sig)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", tt.text, err)
		}
		if !got.Equal(tt.expected) {
			t.Errorf("Decode(%q, %q) = %s, want %s", tt.text, tt.sig, got, tt.expected)
		}
	}
}

func TestCoerce_AnyValuedDictReparse(t *testing.T) {
	raw := List(Map(
		Entry{Key: Str("nested"), Value: Str("{'position': 0}")},
		Entry{Key: Str("number"), Value: Str("42")},
		Entry{Key: Str("word"), Value: Str("hello")},
		Entry{Key: Str("list"), Value: Str("[1, 2]")},
	))

	got, err := Coerce(raw, MustParseSignature("aa{sv}"))
	if err != nil {
		t.Fatalf("Coerce failed: %v", err)
	}
	first, err := got.Index(0)
	if err != nil {
		t.Fatal(err)
	}

	if nested := first.Get("nested"); !nested.Equal(Map(Entry{Key: Str("position"), Value: Int(0)})) {
		t.Errorf("nested = %s, want mapping", nested)
	}
	if n := first.Get("number"); !n.Equal(Int(42)) {
		t.Errorf("number = %s, want 42", n)
	}
	if w := first.Get("word"); !w.Equal(Str("hello")) {
		t.Errorf("word = %s, want text", w)
	}
	if l := first.Get("list"); !l.Equal(List(Int(1), Int(2))) {
		t.Errorf("list = %s, want [1, 2]", l)
	}

	// Only Any-valued dicts re-read their text values.
	got, err = Coerce(Map(Entry{Key: Str("k"), Value: Str("[1]")}), MustParseSignature("a{ss}"))
	if err != nil {
		t.Fatal(err)
	}
	if v := got.Get("k"); !v.Equal(Str("[1]")) {
		t.Errorf("a{ss} value = %s, want text", v)
	}
}

func TestDecode_AppFolderLayout(t *testing.T) {
	text := `
	[{'org.gnome.Geary.desktop': <{'position': <0>}>, 'org.gnome.Contacts.desktop': <{'position': <1>}>, 'org.gnome.Weather.desktop': <{'position': <2>}>, 'org.gnome.clocks.desktop': <{'position': <3>}>, 'org.gnome.Maps.desktop': <{'position': <4>}>, 'simple-scan.desktop': <{'position': <6>}>, 'Utilities': <{'position': <12>}>, 'yelp.desktop': <{'position': <16>}>}]
	`
	got, err := Decode(text, "aa{sv}")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Kind() != KindList || got.Len() != 1 {
		t.Fatalf("expected a one element list, got %s", got)
	}
	first, _ := got.Index(0)
	if first.Kind() != KindMap || first.Len() != 8 {
		t.Fatalf("expected a mapping of 8 entries, got %s", first)
	}

	geary := first.Get("org.gnome.Geary.desktop")
	if !geary.Equal(Map(Entry{Key: Str("position"), Value: Int(0)})) {
		t.Errorf("Geary = %s, want {\"position\": 0}", geary)
	}
	yelp := first.Get("yelp.desktop")
	if !yelp.Equal(Map(Entry{Key: Str("position"), Value: Int(16)})) {
		t.Errorf("yelp = %s, want {\"position\": 16}", yelp)
	}

	entries, _ := first.Entries()
	if k, _ := entries[0].Key.AsStr(); k != "org.gnome.Geary.desktop" {
		t.Errorf("first key = %q, entry order not preserved", k)
	}
}
