package vm

import (
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Array builtins
// ---------------------------------------------------------------------------

func argArray(name string, args []Value, i int) ([]Value, error) {
	if args[i].Kind() != KindArray {
		return nil, errf(ErrType, "%s expects an array, got %s", name, args[i].Kind())
	}
	return args[i].Items(), nil
}

func flattenInto(v Value, out *[]Value) {
	if v.Kind() == KindArray {
		for _, it := range v.Items() {
			flattenInto(it, out)
		}
		return
	}
	*out = append(*out, v)
}

// uniqueValues keeps the first occurrence of each distinct value.
func uniqueValues(items []Value) []Value {
	out := make([]Value, 0, len(items))
	for _, it := range items {
		dup := false
		for _, seen := range out {
			if ValuesEqual(seen, it) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out
}

// sortValues orders a homogeneous array: all-numeric or all-string.
func sortValues(items []Value, descending bool) ([]Value, error) {
	if len(items) == 0 {
		return []Value{}, nil
	}
	allNumeric := true
	allString := true
	for _, it := range items {
		if _, ok := it.AsNumber(); !ok {
			allNumeric = false
		}
		if it.Kind() != KindString {
			allString = false
		}
	}
	out := append([]Value(nil), items...)
	switch {
	case allNumeric:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Num() < out[j].Num() })
	case allString:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Str() < out[j].Str() })
	default:
		return nil, newError(ErrType, "SORT expects a numeric or string array")
	}
	if descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func registerArrayBuiltins() {
	registerBuiltin("ARRAY", 0, -1, func(args []Value) (Value, error) {
		return NewArray(append([]Value(nil), args...)), nil
	})

	registerBuiltin("FIRST", 1, 1, func(args []Value) (Value, error) {
		items, err := argArray("FIRST", args, 0)
		if err != nil {
			return Null, err
		}
		if len(items) == 0 {
			return Null, newError(ErrEval, "FIRST on empty array")
		}
		return items[0], nil
	})

	registerBuiltin("LAST", 1, 1, func(args []Value) (Value, error) {
		items, err := argArray("LAST", args, 0)
		if err != nil {
			return Null, err
		}
		if len(items) == 0 {
			return Null, newError(ErrEval, "LAST on empty array")
		}
		return items[len(items)-1], nil
	})

	registerBuiltin("CONTAINS", 2, 2, func(args []Value) (Value, error) {
		items, err := argArray("CONTAINS", args, 0)
		if err != nil {
			return Null, err
		}
		for _, it := range items {
			if ValuesEqual(it, args[1]) {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	})
	registerAlias("IN", "CONTAINS")

	registerBuiltin("UNIQUE", 1, 1, func(args []Value) (Value, error) {
		items, err := argArray("UNIQUE", args, 0)
		if err != nil {
			return Null, err
		}
		return NewArray(uniqueValues(items)), nil
	})

	registerBuiltin("SORT", 1, 2, func(args []Value) (Value, error) {
		items, err := argArray("SORT", args, 0)
		if err != nil {
			return Null, err
		}
		descending := false
		if len(args) > 1 {
			order, err := argString("SORT", args, 1)
			if err != nil {
				return Null, err
			}
			descending = strings.EqualFold(order, "DESC")
		}
		sorted, err := sortValues(items, descending)
		if err != nil {
			return Null, err
		}
		return NewArray(sorted), nil
	})

	// REVERSE handles both arrays and strings.
	registerBuiltin("REVERSE", 1, 1, func(args []Value) (Value, error) {
		switch args[0].Kind() {
		case KindArray:
			items := args[0].Items()
			out := make([]Value, len(items))
			for i, it := range items {
				out[len(items)-1-i] = it
			}
			return NewArray(out), nil
		case KindString:
			runes := []rune(args[0].Str())
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return NewString(string(runes)), nil
		}
		return Null, errf(ErrType, "REVERSE expects array or string, got %s", args[0].Kind())
	})

	registerBuiltin("JOIN", 1, 2, func(args []Value) (Value, error) {
		items, err := argArray("JOIN", args, 0)
		if err != nil {
			return Null, err
		}
		sep := ","
		if len(args) > 1 {
			sep, err = argString("JOIN", args, 1)
			if err != nil {
				return Null, err
			}
		}
		parts := make([]string, len(items))
		for i, it := range items {
			if it.Kind() == KindArray {
				return Null, newError(ErrType, "JOIN does not flatten nested arrays")
			}
			parts[i] = it.Format()
		}
		return NewString(strings.Join(parts, sep)), nil
	})

	registerBuiltin("FLATTEN", 1, -1, func(args []Value) (Value, error) {
		var out []Value
		for _, a := range args {
			flattenInto(a, &out)
		}
		return NewArray(out), nil
	})

	registerBuiltin("COMPACT", 1, 1, func(args []Value) (Value, error) {
		items, err := argArray("COMPACT", args, 0)
		if err != nil {
			return Null, err
		}
		out := make([]Value, 0, len(items))
		for _, it := range items {
			if !it.IsNull() {
				out = append(out, it)
			}
		}
		return NewArray(out), nil
	})

	// BETWEEN(min, max, x) is inclusive on both ends.
	registerBuiltin("BETWEEN", 3, 3, func(args []Value) (Value, error) {
		lo, err := argNumber("BETWEEN", args, 0)
		if err != nil {
			return Null, err
		}
		hi, err := argNumber("BETWEEN", args, 1)
		if err != nil {
			return Null, err
		}
		x, err := argNumber("BETWEEN", args, 2)
		if err != nil {
			return Null, err
		}
		return NewBool(x >= lo && x <= hi), nil
	})
}
