package vm

import "testing"

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("zero Value should be Null")
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{NewBool(false), false},
		{NewBool(true), true},
		{NewNumber(0), false},
		{NewNumber(0.1), true},
		{NewCurrency(0), false},
		{NewString(""), false},
		{NewString("x"), true},
		{NewArray(nil), false},
		{NewArray([]Value{Null}), true},
		{NewJson("{}"), false},
		{NewJson(`{"a":1}`), true},
		{NewDateTime(0), true},
	}
	for _, tc := range tests {
		if tc.v.Truthy() != tc.want {
			t.Errorf("Truthy(%s %q) = %v, want %v", tc.v.Kind(), tc.v.Format(), tc.v.Truthy(), tc.want)
		}
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{NewNumber(1), NewNumber(1), true},
		{NewNumber(1), NewCurrency(1), true},
		{NewNumber(1), NewBool(true), true},
		{NewNumber(1), NewString("1"), false},
		{NewString("a"), NewString("a"), true},
		{Null, Null, true},
		{Null, NewNumber(0), false},
		{NewDateTime(5), NewDateTime(5), true},
		{
			NewArray([]Value{NewNumber(1), NewString("x")}),
			NewArray([]Value{NewNumber(1), NewString("x")}),
			true,
		},
		{
			NewArray([]Value{NewNumber(1)}),
			NewArray([]Value{NewNumber(2)}),
			false,
		},
	}
	for _, tc := range tests {
		if ValuesEqual(tc.a, tc.b) != tc.want {
			t.Errorf("ValuesEqual(%s, %s) = %v, want %v",
				tc.a.Format(), tc.b.Format(), !tc.want, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewNumber(42), "42"},
		{NewNumber(2.5), "2.5"},
		{NewCurrency(9.5), "9.5000"},
		{NewBool(true), "TRUE"},
		{NewBool(false), "FALSE"},
		{NewString("hi"), "hi"},
		{Null, ""},
		{NewDateTime(100), "100"},
		{NewArray([]Value{NewNumber(1), NewString("a")}), `[1, "a"]`},
	}
	for _, tc := range tests {
		if got := tc.v.Format(); got != tc.want {
			t.Errorf("Format(%s) = %q, want %q", tc.v.Kind(), got, tc.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v, err := FromJSONInterface(map[string]interface{}{"a": 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindJson {
		t.Fatalf("object kind = %s, want Json", v.Kind())
	}

	arr, err := FromJSONInterface([]interface{}{1.0, "x", true, nil})
	if err != nil {
		t.Fatal(err)
	}
	if arr.Kind() != KindArray || len(arr.Items()) != 4 {
		t.Fatalf("array = %v", arr.Format())
	}
	if !arr.Items()[3].IsNull() {
		t.Error("JSON null should lift to Null")
	}

	back, err := arr.ToJSONInterface()
	if err != nil {
		t.Fatal(err)
	}
	lowered, ok := back.([]interface{})
	if !ok || len(lowered) != 4 {
		t.Errorf("ToJSONInterface = %#v", back)
	}
}
