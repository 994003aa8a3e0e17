package vm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Value: the Skillet runtime value model
// ---------------------------------------------------------------------------

// Kind identifies the concrete variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBoolean
	KindString
	KindArray
	KindCurrency
	KindDateTime
	KindJson
)

var kindNames = map[Kind]string{
	KindNull:     "Null",
	KindNumber:   "Number",
	KindBoolean:  "Boolean",
	KindString:   "String",
	KindArray:    "Array",
	KindCurrency: "Currency",
	KindDateTime: "DateTime",
	KindJson:     "Json",
}

func (k Kind) String() string { return kindNames[k] }

// Value is a tagged union over the eight Skillet variants. Values are
// immutable: every operation returns a new Value. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64 // Number, Currency
	ts   int64   // DateTime: seconds since Unix epoch
	b    bool    // Boolean
	str  string  // String, Json
	arr  []Value // Array
}

// Null is the Null value.
var Null = Value{}

// NewNumber creates a Number value.
func NewNumber(n float64) Value { return Value{kind: KindNumber, num: n} }

// NewCurrency creates a Currency value.
func NewCurrency(n float64) Value { return Value{kind: KindCurrency, num: n} }

// NewBool creates a Boolean value.
func NewBool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// NewString creates a String value.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewJson creates a Json value holding the given JSON document text.
func NewJson(s string) Value { return Value{kind: KindJson, str: s} }

// NewDateTime creates a DateTime value from epoch seconds.
func NewDateTime(ts int64) Value { return Value{kind: KindDateTime, ts: ts} }

// NewArray creates an Array value. The slice is owned by the Value.
func NewArray(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Kind returns the concrete variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Num returns the raw numeric payload of a Number or Currency.
func (v Value) Num() float64 { return v.num }

// Bool returns the Boolean payload.
func (v Value) Bool() bool { return v.b }

// Str returns the String or Json payload.
func (v Value) Str() string { return v.str }

// Items returns the Array payload.
func (v Value) Items() []Value { return v.arr }

// Timestamp returns the DateTime payload in epoch seconds.
func (v Value) Timestamp() int64 { return v.ts }

// AsNumber returns the float payload for Number and Currency values.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber, KindCurrency:
		return v.num, true
	}
	return 0, false
}

// Numeric widens to float64 under the arithmetic coercion rules:
// Number and Currency carry over, Boolean maps to 0/1.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber, KindCurrency:
		return v.num, true
	case KindBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Truthy implements the logical-operator view of a value. Falsy: Null,
// false, 0, empty String, empty Array, and a Json empty object.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber, KindCurrency:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindArray:
		return len(v.arr) > 0
	case KindJson:
		t := strings.TrimSpace(v.str)
		return t != "" && t != "{}" && t != "null"
	}
	return true
}

// ValuesEqual is structural equality. Number, Currency and Boolean compare
// numerically with each other; all other cross-kind pairs are unequal.
func ValuesEqual(a, b Value) bool {
	if an, ok := a.Numeric(); ok {
		if bn, ok := b.Numeric(); ok {
			return an == bn
		}
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString, KindJson:
		return a.str == b.str
	case KindDateTime:
		return a.ts == b.ts
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !ValuesEqual(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsBlank reports the "blank" view used by ISBLANK and blank?/present?:
// Null, whitespace-only strings and empty arrays are blank.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindArray:
		return len(v.arr) == 0
	}
	return false
}

// FormatNumber renders a float the way Skillet prints numbers: no exponent,
// no trailing zeros.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Format renders a value for display and string conversion.
func (v Value) Format() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindNumber:
		return FormatNumber(v.num)
	case KindCurrency:
		return strconv.FormatFloat(v.num, 'f', 4, 64)
	case KindBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindString, KindJson:
		return v.str
	case KindDateTime:
		return strconv.FormatInt(v.ts, 10)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, it := range v.arr {
			if it.kind == KindString {
				parts[i] = strconv.Quote(it.str)
			} else {
				parts[i] = it.Format()
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// ToJSONInterface lowers a Value to the encoding/json object model.
func (v Value) ToJSONInterface() (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindNumber, KindCurrency:
		return v.num, nil
	case KindBoolean:
		return v.b, nil
	case KindString:
		return v.str, nil
	case KindDateTime:
		return v.ts, nil
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, it := range v.arr {
			conv, err := it.ToJSONInterface()
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case KindJson:
		var parsed interface{}
		if err := json.Unmarshal([]byte(v.str), &parsed); err != nil {
			return nil, errf(ErrEval, "invalid JSON: %v", err)
		}
		return parsed, nil
	}
	return nil, errf(ErrEval, "cannot serialize %s", v.kind)
}

// FromJSONInterface lifts an encoding/json value into a Skillet Value.
// Objects become Json values (re-serialized); everything else maps onto the
// natural variant.
func FromJSONInterface(data interface{}) (Value, error) {
	switch x := data.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(x), nil
	case float64:
		return NewNumber(x), nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Null, errf(ErrEval, "invalid number in JSON: %v", err)
		}
		return NewNumber(n), nil
	case string:
		return NewString(x), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, it := range x {
			v, err := FromJSONInterface(it)
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return NewArray(items), nil
	case map[string]interface{}:
		raw, err := json.Marshal(x)
		if err != nil {
			return Null, errf(ErrEval, "cannot serialize JSON object: %v", err)
		}
		return NewJson(string(raw)), nil
	}
	return Null, errf(ErrEval, "unsupported JSON value %T", data)
}
