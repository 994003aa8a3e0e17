package vm

import "math"

// ---------------------------------------------------------------------------
// Arithmetic builtins
// ---------------------------------------------------------------------------

// argNumber fetches args[i] as a number.
func argNumber(name string, args []Value, i int) (float64, error) {
	n, ok := args[i].AsNumber()
	if !ok {
		return 0, errf(ErrType, "%s expects a number, got %s", name, args[i].Kind())
	}
	return n, nil
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(n float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	factor := math.Pow(10, float64(decimals))
	return math.Round(n*factor) / factor
}

func registerArithmeticBuiltins() {
	registerBuiltin("SUM", 1, -1, func(args []Value) (Value, error) {
		acc := 0.0
		for _, n := range collectArgNumbers(args) {
			acc += n
		}
		return NewNumber(acc), nil
	})

	registerBuiltin("AVERAGE", 1, -1, func(args []Value) (Value, error) {
		nums := collectArgNumbers(args)
		if len(nums) == 0 {
			return Null, newError(ErrEval, "AVERAGE of empty range")
		}
		acc := 0.0
		for _, n := range nums {
			acc += n
		}
		return NewNumber(acc / float64(len(nums))), nil
	})
	registerAlias("AVG", "AVERAGE")

	registerBuiltin("MIN", 1, -1, func(args []Value) (Value, error) {
		nums := collectArgNumbers(args)
		if len(nums) == 0 {
			return Null, newError(ErrEval, "MIN of empty range")
		}
		cur := nums[0]
		for _, n := range nums[1:] {
			cur = math.Min(cur, n)
		}
		return NewNumber(cur), nil
	})

	registerBuiltin("MAX", 1, -1, func(args []Value) (Value, error) {
		nums := collectArgNumbers(args)
		if len(nums) == 0 {
			return Null, newError(ErrEval, "MAX of empty range")
		}
		cur := nums[0]
		for _, n := range nums[1:] {
			cur = math.Max(cur, n)
		}
		return NewNumber(cur), nil
	})

	// COUNT counts numeric leaves only; strings, booleans and nulls are
	// skipped.
	registerBuiltin("COUNT", 1, -1, func(args []Value) (Value, error) {
		return NewNumber(float64(len(collectArgNumbers(args)))), nil
	})

	registerBuiltin("ABS", 1, 1, func(args []Value) (Value, error) {
		n, err := argNumber("ABS", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Abs(n)), nil
	})

	registerBuiltin("ROUND", 1, 2, func(args []Value) (Value, error) {
		n, err := argNumber("ROUND", args, 0)
		if err != nil {
			return Null, err
		}
		decimals := 0
		if len(args) > 1 {
			d, err := argNumber("ROUND", args, 1)
			if err != nil {
				return Null, err
			}
			decimals = int(d)
		}
		return NewNumber(roundTo(n, decimals)), nil
	})

	registerBuiltin("CEILING", 1, 2, func(args []Value) (Value, error) {
		n, err := argNumber("CEILING", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Ceil(n)), nil
	})
	registerAlias("CEIL", "CEILING")

	registerBuiltin("FLOOR", 1, 1, func(args []Value) (Value, error) {
		n, err := argNumber("FLOOR", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Floor(n)), nil
	})

	// INT truncates toward zero: INT(-2.5) is -2.
	registerBuiltin("INT", 1, 1, func(args []Value) (Value, error) {
		n, err := argNumber("INT", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Trunc(n)), nil
	})

	registerBuiltin("MOD", 2, 2, func(args []Value) (Value, error) {
		a, err := argNumber("MOD", args, 0)
		if err != nil {
			return Null, err
		}
		b, err := argNumber("MOD", args, 1)
		if err != nil {
			return Null, err
		}
		if b == 0 {
			return Null, newError(ErrDivisionByZero, "MOD by zero")
		}
		return NewNumber(math.Mod(a, b)), nil
	})

	registerBuiltin("POWER", 2, 2, func(args []Value) (Value, error) {
		a, err := argNumber("POWER", args, 0)
		if err != nil {
			return Null, err
		}
		b, err := argNumber("POWER", args, 1)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Pow(a, b)), nil
	})
	registerAlias("POW", "POWER")

	registerBuiltin("SQRT", 1, 1, func(args []Value) (Value, error) {
		n, err := argNumber("SQRT", args, 0)
		if err != nil {
			return Null, err
		}
		if n < 0 {
			return Null, newError(ErrEval, "SQRT of negative number")
		}
		return NewNumber(math.Sqrt(n)), nil
	})
}
