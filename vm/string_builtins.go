package vm

import "strings"

// ---------------------------------------------------------------------------
// Text builtins
// ---------------------------------------------------------------------------

func argString(name string, args []Value, i int) (string, error) {
	if args[i].Kind() != KindString {
		return "", errf(ErrType, "%s expects a string, got %s", name, args[i].Kind())
	}
	return args[i].Str(), nil
}

func registerStringBuiltins() {
	registerBuiltin("LENGTH", 1, 1, func(args []Value) (Value, error) {
		switch args[0].Kind() {
		case KindArray:
			return NewNumber(float64(len(args[0].Items()))), nil
		case KindString:
			return NewNumber(float64(len([]rune(args[0].Str())))), nil
		case KindNull:
			return NewNumber(0), nil
		}
		return Null, errf(ErrType, "LENGTH expects array or string, got %s", args[0].Kind())
	})
	registerAlias("LEN", "LENGTH")

	// CONCAT stringifies every argument, descending into arrays; Nulls are
	// skipped.
	registerBuiltin("CONCAT", 0, -1, func(args []Value) (Value, error) {
		var sb strings.Builder
		var push func(v Value)
		push = func(v Value) {
			if v.Kind() == KindArray {
				for _, it := range v.Items() {
					push(it)
				}
				return
			}
			sb.WriteString(v.Format())
		}
		for _, a := range args {
			push(a)
		}
		return NewString(sb.String()), nil
	})

	registerBuiltin("UPPER", 1, 1, func(args []Value) (Value, error) {
		s, err := argString("UPPER", args, 0)
		if err != nil {
			return Null, err
		}
		return NewString(strings.ToUpper(s)), nil
	})

	registerBuiltin("LOWER", 1, 1, func(args []Value) (Value, error) {
		s, err := argString("LOWER", args, 0)
		if err != nil {
			return Null, err
		}
		return NewString(strings.ToLower(s)), nil
	})

	registerBuiltin("TRIM", 1, 1, func(args []Value) (Value, error) {
		s, err := argString("TRIM", args, 0)
		if err != nil {
			return Null, err
		}
		return NewString(strings.TrimSpace(s)), nil
	})

	// SUBSTRING(text, start, [len]) is 0-based with clamped bounds.
	registerBuiltin("SUBSTRING", 2, 3, func(args []Value) (Value, error) {
		s, err := argString("SUBSTRING", args, 0)
		if err != nil {
			return Null, err
		}
		startN, err := argNumber("SUBSTRING", args, 1)
		if err != nil {
			return Null, err
		}
		chars := []rune(s)
		start := int(startN)
		if start < 0 {
			start = 0
		}
		end := len(chars)
		if len(args) > 2 {
			length, err := argNumber("SUBSTRING", args, 2)
			if err != nil {
				return Null, err
			}
			if length < 0 {
				length = 0
			}
			end = start + int(length)
		}
		if start > len(chars) {
			start = len(chars)
		}
		if end > len(chars) {
			end = len(chars)
		}
		if end < start {
			end = start
		}
		return NewString(string(chars[start:end])), nil
	})

	// LEFT(text, [n]) defaults to a single character.
	registerBuiltin("LEFT", 1, 2, func(args []Value) (Value, error) {
		s, err := argString("LEFT", args, 0)
		if err != nil {
			return Null, err
		}
		take := 1
		if len(args) > 1 {
			n, err := argNumber("LEFT", args, 1)
			if err != nil {
				return Null, err
			}
			take = int(n)
			if take < 0 {
				take = 0
			}
		}
		chars := []rune(s)
		if take > len(chars) {
			take = len(chars)
		}
		return NewString(string(chars[:take])), nil
	})

	registerBuiltin("RIGHT", 1, 2, func(args []Value) (Value, error) {
		s, err := argString("RIGHT", args, 0)
		if err != nil {
			return Null, err
		}
		take := 1
		if len(args) > 1 {
			n, err := argNumber("RIGHT", args, 1)
			if err != nil {
				return Null, err
			}
			take = int(n)
			if take < 0 {
				take = 0
			}
		}
		chars := []rune(s)
		if take > len(chars) {
			take = len(chars)
		}
		return NewString(string(chars[len(chars)-take:])), nil
	})

	// MID(text, start, [n]) is 1-based, Excel-style.
	registerBuiltin("MID", 2, 3, func(args []Value) (Value, error) {
		s, err := argString("MID", args, 0)
		if err != nil {
			return Null, err
		}
		startN, err := argNumber("MID", args, 1)
		if err != nil {
			return Null, err
		}
		chars := []rune(s)
		start := int(startN)
		if start < 1 {
			start = 1
		}
		start-- // to 0-based
		if start > len(chars) {
			start = len(chars)
		}
		end := len(chars)
		if len(args) > 2 {
			n, err := argNumber("MID", args, 2)
			if err != nil {
				return Null, err
			}
			take := int(n)
			if take < 0 {
				take = 0
			}
			end = start + take
			if end > len(chars) {
				end = len(chars)
			}
		}
		if end < start {
			end = start
		}
		return NewString(string(chars[start:end])), nil
	})

	// SUBSTITUTE(text, search, replacement) replaces every occurrence.
	registerBuiltin("SUBSTITUTE", 3, 3, func(args []Value) (Value, error) {
		s, err := argString("SUBSTITUTE", args, 0)
		if err != nil {
			return Null, err
		}
		from, err := argString("SUBSTITUTE", args, 1)
		if err != nil {
			return Null, err
		}
		to, err := argString("SUBSTITUTE", args, 2)
		if err != nil {
			return Null, err
		}
		return NewString(strings.ReplaceAll(s, from, to)), nil
	})
	registerAlias("SUBSTITUTEM", "SUBSTITUTE")

	// REPLACE(old, start, nchars, new) is positional, Excel-style: start is
	// 1-based, nchars=0 inserts, overflow clamps.
	registerBuiltin("REPLACE", 4, 4, func(args []Value) (Value, error) {
		s, err := argString("REPLACE", args, 0)
		if err != nil {
			return Null, err
		}
		startN, err := argNumber("REPLACE", args, 1)
		if err != nil {
			return Null, err
		}
		countN, err := argNumber("REPLACE", args, 2)
		if err != nil {
			return Null, err
		}
		repl, err := argString("REPLACE", args, 3)
		if err != nil {
			return Null, err
		}
		chars := []rune(s)
		start := int(startN)
		if start < 1 {
			start = 1
		}
		start--
		if start > len(chars) {
			start = len(chars)
		}
		count := int(countN)
		if count < 0 {
			count = 0
		}
		end := start + count
		if end > len(chars) {
			end = len(chars)
		}
		return NewString(string(chars[:start]) + repl + string(chars[end:])), nil
	})

	registerBuiltin("SPLIT", 1, 2, func(args []Value) (Value, error) {
		s, err := argString("SPLIT", args, 0)
		if err != nil {
			return Null, err
		}
		if len(args) > 1 {
			sep, err := argString("SPLIT", args, 1)
			if err != nil {
				return Null, err
			}
			parts := strings.Split(s, sep)
			items := make([]Value, len(parts))
			for i, p := range parts {
				items[i] = NewString(p)
			}
			return NewArray(items), nil
		}
		// Default: split on commas and trim each piece.
		parts := strings.Split(s, ",")
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = NewString(strings.TrimSpace(p))
		}
		return NewArray(items), nil
	})

	registerBuiltin("ISBLANK", 1, 1, func(args []Value) (Value, error) {
		return NewBool(args[0].IsBlank()), nil
	})

	registerBuiltin("ISNUMBER", 1, 1, func(args []Value) (Value, error) {
		k := args[0].Kind()
		return NewBool(k == KindNumber || k == KindCurrency), nil
	})

	registerBuiltin("ISTEXT", 1, 1, func(args []Value) (Value, error) {
		return NewBool(args[0].Kind() == KindString), nil
	})
}
