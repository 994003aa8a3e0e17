package vm

import (
	"strings"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Array methods
// ---------------------------------------------------------------------------

func arrayMethod(fn func(items []Value) (Value, error)) methodFunc {
	return func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 0 {
			return Null, newError(ErrArity, "method takes no arguments")
		}
		return fn(recv.Items())
	}
}

// arrayNumbers requires every element to be numeric.
func arrayNumbers(name string, items []Value) ([]float64, error) {
	nums := make([]float64, len(items))
	for i, it := range items {
		n, ok := it.AsNumber()
		if !ok {
			return nil, errf(ErrType, "%s expects a numeric array, got %s element", name, it.Kind())
		}
		nums[i] = n
	}
	return nums, nil
}

func registerArrayMethods() {
	lengthFn := arrayMethod(func(items []Value) (Value, error) {
		return NewNumber(float64(len(items))), nil
	})
	registerMethod(KindArray, "length", lengthFn)
	registerMethod(KindArray, "count", lengthFn)
	registerMethod(KindArray, "size", lengthFn)

	registerMethod(KindArray, "first", arrayMethod(func(items []Value) (Value, error) {
		if len(items) == 0 {
			return Null, newError(ErrEval, "first on empty array")
		}
		return items[0], nil
	}))

	registerMethod(KindArray, "last", arrayMethod(func(items []Value) (Value, error) {
		if len(items) == 0 {
			return Null, newError(ErrEval, "last on empty array")
		}
		return items[len(items)-1], nil
	}))

	registerMethod(KindArray, "reverse", arrayMethod(func(items []Value) (Value, error) {
		out := make([]Value, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return NewArray(out), nil
	}))

	registerMethod(KindArray, "unique", arrayMethod(func(items []Value) (Value, error) {
		return NewArray(uniqueValues(items)), nil
	}))

	registerMethod(KindArray, "flatten", arrayMethod(func(items []Value) (Value, error) {
		var out []Value
		for _, it := range items {
			flattenInto(it, &out)
		}
		return NewArray(out), nil
	}))

	registerMethod(KindArray, "compact", arrayMethod(func(items []Value) (Value, error) {
		out := make([]Value, 0, len(items))
		for _, it := range items {
			if !it.IsNull() {
				out = append(out, it)
			}
		}
		return NewArray(out), nil
	}))

	registerMethod(KindArray, "sum", arrayMethod(func(items []Value) (Value, error) {
		nums, err := arrayNumbers("sum", items)
		if err != nil {
			return Null, err
		}
		acc := 0.0
		for _, n := range nums {
			acc += n
		}
		return NewNumber(acc), nil
	}))

	registerMethod(KindArray, "avg", arrayMethod(func(items []Value) (Value, error) {
		nums, err := arrayNumbers("avg", items)
		if err != nil {
			return Null, err
		}
		if len(nums) == 0 {
			return Null, newError(ErrEval, "avg of empty array")
		}
		acc := 0.0
		for _, n := range nums {
			acc += n
		}
		return NewNumber(acc / float64(len(nums))), nil
	}))

	registerMethod(KindArray, "min", arrayMethod(func(items []Value) (Value, error) {
		nums, err := arrayNumbers("min", items)
		if err != nil {
			return Null, err
		}
		if len(nums) == 0 {
			return Null, newError(ErrEval, "min on empty array")
		}
		cur := nums[0]
		for _, n := range nums[1:] {
			if n < cur {
				cur = n
			}
		}
		return NewNumber(cur), nil
	}))

	registerMethod(KindArray, "max", arrayMethod(func(items []Value) (Value, error) {
		nums, err := arrayNumbers("max", items)
		if err != nil {
			return Null, err
		}
		if len(nums) == 0 {
			return Null, newError(ErrEval, "max on empty array")
		}
		cur := nums[0]
		for _, n := range nums[1:] {
			if n > cur {
				cur = n
			}
		}
		return NewNumber(cur), nil
	}))

	registerMethod(KindArray, "sort", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		descending := false
		if len(args) > 0 {
			vals, err := in.evalArgs(args, env)
			if err != nil {
				return Null, err
			}
			if vals[0].Kind() == KindString {
				descending = strings.EqualFold(vals[0].Str(), "DESC")
			}
		}
		sorted, err := sortValues(recv.Items(), descending)
		if err != nil {
			return Null, err
		}
		return NewArray(sorted), nil
	})

	registerMethod(KindArray, "join", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		sep := ","
		if len(args) > 0 {
			vals, err := in.evalArgs(args, env)
			if err != nil {
				return Null, err
			}
			if vals[0].Kind() != KindString {
				return Null, errf(ErrType, "join expects a string separator, got %s", vals[0].Kind())
			}
			sep = vals[0].Str()
		}
		items := recv.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			if it.Kind() == KindArray {
				return Null, newError(ErrType, "join does not flatten nested arrays")
			}
			parts[i] = it.Format()
		}
		return NewString(strings.Join(parts, sep)), nil
	})

	containsFn := func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) != 1 {
			return Null, newError(ErrArity, "contains expects (value)")
		}
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return Null, err
		}
		for _, it := range recv.Items() {
			if ValuesEqual(it, vals[0]) {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	}
	registerMethod(KindArray, "contains", containsFn)
	registerMethod(KindArray, "includes", containsFn)

	// The functional methods mirror the FILTER/MAP/FIND/REDUCE builtins;
	// the receiver takes the place of the array argument.
	registerMethod(KindArray, "filter", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		return in.filterItems(recv.Items(), args, env)
	})
	registerMethod(KindArray, "map", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		return in.mapItems(recv.Items(), args, env)
	})
	registerMethod(KindArray, "find", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		return in.findItem(recv.Items(), args, env)
	})
	registerMethod(KindArray, "reduce", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		return in.reduceItems(recv.Items(), args, env)
	})
}
