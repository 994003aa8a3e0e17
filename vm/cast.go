package vm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Type casting ('::' operator) and the shared conversion table
// ---------------------------------------------------------------------------

// parseNumericPrefix reads the leading numeric run of a string: optional
// sign, digits, at most one decimal point. Non-numeric strings yield 0.
func parseNumericPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	hasDot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case i == 0 && (c == '-' || c == '+'):
			sb.WriteByte(c)
		case c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == '.' && !hasDot:
			sb.WriteByte(c)
			hasDot = true
		default:
			i = len(s)
		}
	}
	n, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0
	}
	return n
}

// toFloat is the Float conversion shared by '::Float' and to_f.
func toFloat(v Value) (float64, error) {
	switch v.Kind() {
	case KindNumber, KindCurrency:
		return v.num, nil
	case KindString, KindJson:
		return parseNumericPrefix(v.str), nil
	case KindBoolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindNull:
		return 0, nil
	case KindDateTime:
		return float64(v.ts), nil
	case KindArray:
		return float64(len(v.arr)), nil
	}
	return 0, errf(ErrType, "cannot convert %s to Float", v.Kind())
}

// toInt truncates toward zero.
func toInt(v Value) (float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return math.Trunc(f), nil
}

// toArray wraps non-arrays in a single-element array; Null becomes [].
func toArray(v Value) Value {
	switch v.Kind() {
	case KindArray:
		return v
	case KindNull:
		return NewArray(nil)
	}
	return NewArray([]Value{v})
}

// toBool applies the truthiness table.
func toBool(v Value) bool {
	switch v.Kind() {
	case KindString, KindJson:
		return strings.TrimSpace(v.str) != "" && v.Truthy()
	}
	return v.Truthy()
}

// toJSONText renders a value as a JSON document; Null becomes "{}" per the
// conversion table.
func toJSONText(v Value) (string, error) {
	if v.Kind() == KindNull {
		return "{}", nil
	}
	if v.Kind() == KindJson {
		return v.str, nil
	}
	data, err := v.ToJSONInterface()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", errf(ErrEval, "cannot serialize to JSON: %v", err)
	}
	return string(raw), nil
}

// CastValue implements 'x :: T'.
func CastValue(v Value, ty compiler.TypeName) (Value, error) {
	switch ty {
	case compiler.TypeFloat:
		n, err := toFloat(v)
		if err != nil {
			return Null, err
		}
		return NewNumber(n), nil

	case compiler.TypeInteger:
		n, err := toInt(v)
		if err != nil {
			return Null, err
		}
		return NewNumber(n), nil

	case compiler.TypeString:
		return NewString(v.Format()), nil

	case compiler.TypeBoolean:
		return NewBool(toBool(v)), nil

	case compiler.TypeArray:
		return toArray(v), nil

	case compiler.TypeCurrency:
		n, err := toFloat(v)
		if err != nil {
			return Null, errf(ErrType, "cannot cast %s to Currency", v.Kind())
		}
		return NewCurrency(n), nil

	case compiler.TypeDateTime:
		switch v.Kind() {
		case KindDateTime:
			return v, nil
		case KindNumber, KindCurrency:
			return NewDateTime(int64(v.num)), nil
		case KindString:
			ts, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
			if err != nil {
				return Null, errf(ErrType, "cannot cast String %q to DateTime", v.str)
			}
			return NewDateTime(ts), nil
		}
		return Null, errf(ErrType, "cannot cast %s to DateTime", v.Kind())

	case compiler.TypeJson:
		text, err := toJSONText(v)
		if err != nil {
			return Null, err
		}
		return NewJson(text), nil
	}
	return Null, errf(ErrType, "unknown cast target")
}
