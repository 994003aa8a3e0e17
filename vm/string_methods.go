package vm

import (
	"strings"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// String methods
// ---------------------------------------------------------------------------

func stringMethod(fn func(s string) Value) methodFunc {
	return func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 0 {
			return Null, newError(ErrArity, "method takes no arguments")
		}
		return fn(recv.Str()), nil
	}
}

func registerStringMethods() {
	registerMethod(KindString, "upper", stringMethod(func(s string) Value {
		return NewString(strings.ToUpper(s))
	}))
	registerMethod(KindString, "lower", stringMethod(func(s string) Value {
		return NewString(strings.ToLower(s))
	}))
	registerMethod(KindString, "trim", stringMethod(func(s string) Value {
		return NewString(strings.TrimSpace(s))
	}))
	registerMethod(KindString, "reverse", stringMethod(func(s string) Value {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return NewString(string(runes))
	}))

	lengthFn := stringMethod(func(s string) Value {
		return NewNumber(float64(len([]rune(s))))
	})
	registerMethod(KindString, "length", lengthFn)
	registerMethod(KindString, "size", lengthFn)

	registerMethod(KindString, "includes", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) != 1 {
			return Null, newError(ErrArity, "includes expects (substring)")
		}
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return Null, err
		}
		if vals[0].Kind() != KindString {
			return Null, errf(ErrType, "includes expects a string, got %s", vals[0].Kind())
		}
		return NewBool(strings.Contains(recv.Str(), vals[0].Str())), nil
	})

	registerMethod(KindString, "split", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 1 {
			return Null, newError(ErrArity, "split expects ([separator])")
		}
		sep := ","
		trim := true
		if len(args) == 1 {
			vals, err := in.evalArgs(args, env)
			if err != nil {
				return Null, err
			}
			if vals[0].Kind() != KindString {
				return Null, errf(ErrType, "split expects a string separator, got %s", vals[0].Kind())
			}
			sep = vals[0].Str()
			trim = false
		}
		parts := strings.Split(recv.Str(), sep)
		items := make([]Value, len(parts))
		for i, p := range parts {
			if trim {
				p = strings.TrimSpace(p)
			}
			items[i] = NewString(p)
		}
		return NewArray(items), nil
	})
}
