package vm

// ---------------------------------------------------------------------------
// Logical builtins
// ---------------------------------------------------------------------------

func registerLogicalBuiltins() {
	registerBuiltin("IF", 2, 3, func(args []Value) (Value, error) {
		if args[0].Truthy() {
			return args[1], nil
		}
		if len(args) > 2 {
			return args[2], nil
		}
		return NewBool(false), nil
	})

	// IFS scans condition/value pairs and returns the value of the first
	// truthy condition.
	registerBuiltin("IFS", 2, -1, func(args []Value) (Value, error) {
		if len(args)%2 != 0 {
			return Null, newError(ErrArity, "IFS expects condition,value pairs")
		}
		for i := 0; i < len(args); i += 2 {
			if args[i].Truthy() {
				return args[i+1], nil
			}
		}
		return NewBool(false), nil
	})

	registerBuiltin("AND", 1, -1, func(args []Value) (Value, error) {
		for _, a := range args {
			if !a.Truthy() {
				return NewBool(false), nil
			}
		}
		return NewBool(true), nil
	})

	registerBuiltin("OR", 1, -1, func(args []Value) (Value, error) {
		for _, a := range args {
			if a.Truthy() {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	})

	registerBuiltin("NOT", 1, 1, func(args []Value) (Value, error) {
		return NewBool(!args[0].Truthy()), nil
	})

	// XOR is true when an odd number of arguments are truthy.
	registerBuiltin("XOR", 1, -1, func(args []Value) (Value, error) {
		count := 0
		for _, a := range args {
			if a.Truthy() {
				count++
			}
		}
		return NewBool(count%2 == 1), nil
	})
}
