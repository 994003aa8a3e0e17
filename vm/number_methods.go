package vm

import (
	"math"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Number methods (shared by Currency receivers)
// ---------------------------------------------------------------------------

// numberMethod lifts a float transform into a methodFunc with no
// arguments.
func numberMethod(fn func(n float64) float64) methodFunc {
	return func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 0 {
			return Null, newError(ErrArity, "method takes no arguments")
		}
		return NewNumber(fn(recv.Num())), nil
	}
}

func registerNumberMethods() {
	registerMethod(KindNumber, "abs", numberMethod(math.Abs))
	registerMethod(KindNumber, "floor", numberMethod(math.Floor))
	registerMethod(KindNumber, "ceil", numberMethod(math.Ceil))
	registerMethod(KindNumber, "int", numberMethod(math.Trunc))
	registerMethod(KindNumber, "sin", numberMethod(math.Sin))
	registerMethod(KindNumber, "cos", numberMethod(math.Cos))
	registerMethod(KindNumber, "tan", numberMethod(math.Tan))

	registerMethod(KindNumber, "sqrt", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if recv.Num() < 0 {
			return Null, newError(ErrEval, "sqrt of negative number")
		}
		return NewNumber(math.Sqrt(recv.Num())), nil
	})

	registerMethod(KindNumber, "round", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		decimals := 0
		if len(args) > 0 {
			vals, err := in.evalArgs(args, env)
			if err != nil {
				return Null, err
			}
			if d, ok := vals[0].AsNumber(); ok {
				decimals = int(d)
			}
		}
		return NewNumber(roundTo(recv.Num(), decimals)), nil
	})

	registerMethod(KindNumber, "between", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) != 2 {
			return Null, newError(ErrArity, "between expects (min, max)")
		}
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return Null, err
		}
		lo, ok := vals[0].AsNumber()
		if !ok {
			return Null, newError(ErrType, "between expects numeric bounds")
		}
		hi, ok := vals[1].AsNumber()
		if !ok {
			return Null, newError(ErrType, "between expects numeric bounds")
		}
		n := recv.Num()
		return NewBool(n >= lo && n <= hi), nil
	})

	registerPredicate(KindNumber, "positive", func(v Value) bool { return v.Num() > 0 })
	registerPredicate(KindNumber, "negative", func(v Value) bool { return v.Num() < 0 })
	registerPredicate(KindNumber, "zero", func(v Value) bool { return v.Num() == 0 })
	registerPredicate(KindNumber, "even", func(v Value) bool { return int64(v.Num())%2 == 0 })
	registerPredicate(KindNumber, "odd", func(v Value) bool { return int64(v.Num())%2 != 0 })
}
