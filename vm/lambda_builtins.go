package vm

import (
	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Higher-order builtins: FILTER, MAP, REDUCE, FIND, SUMIF, AVGIF, COUNTIF
//
// These receive their lambda argument as a raw subexpression; the body is
// parsed once and re-evaluated per element in a child scope of the calling
// environment.
// ---------------------------------------------------------------------------

type higherOrderFunc func(in *Interp, args []compiler.Expr, env *Environment) (Value, error)

var higherOrderBuiltins map[string]higherOrderFunc

func init() {
	higherOrderBuiltins = map[string]higherOrderFunc{
		"FILTER":  evalFilter,
		"MAP":     evalMap,
		"FIND":    evalFind,
		"REDUCE":  evalReduce,
		"SUMIF":   evalSumIf,
		"AVGIF":   evalAvgIf,
		"COUNTIF": evalCountIf,
	}
}

// paramName resolves an optional parameter-name argument, defaulting when
// absent or not a string.
func (in *Interp) paramName(args []compiler.Expr, i int, env *Environment, fallback string) (string, error) {
	if i >= len(args) {
		return fallback, nil
	}
	v, err := in.Eval(args[i], env)
	if err != nil {
		return "", err
	}
	if v.Kind() == KindString {
		return v.Str(), nil
	}
	return fallback, nil
}

// lambdaArray evaluates the first argument and requires an Array.
func (in *Interp) lambdaArray(name string, args []compiler.Expr, env *Environment) ([]Value, error) {
	v, err := in.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if v.Kind() != KindArray {
		return nil, errf(ErrType, "%s first argument must be an array, got %s", name, v.Kind())
	}
	return v.Items(), nil
}

func evalFilter(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Null, newError(ErrArity, "FILTER expects (array, expr, [param])")
	}
	items, err := in.lambdaArray("FILTER", args, env)
	if err != nil {
		return Null, err
	}
	return in.filterItems(items, args[1:], env)
}

// filterItems implements filtering over items with body args[0] and an
// optional parameter name args[1]; shared by FILTER and Array.filter.
func (in *Interp) filterItems(items []Value, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, newError(ErrArity, "filter expects (expr, [param])")
	}
	param, err := in.paramName(args, 1, env, "x")
	if err != nil {
		return Null, err
	}
	body := args[0]
	out := make([]Value, 0, len(items))
	for _, it := range items {
		scope := env.Child()
		scope.Set(param, it)
		keep, err := in.Eval(body, scope)
		if err != nil {
			return Null, err
		}
		if keep.Truthy() {
			out = append(out, it)
		}
	}
	return NewArray(out), nil
}

func evalMap(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Null, newError(ErrArity, "MAP expects (array, expr, [param])")
	}
	items, err := in.lambdaArray("MAP", args, env)
	if err != nil {
		return Null, err
	}
	return in.mapItems(items, args[1:], env)
}

func (in *Interp) mapItems(items []Value, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, newError(ErrArity, "map expects (expr, [param])")
	}
	param, err := in.paramName(args, 1, env, "x")
	if err != nil {
		return Null, err
	}
	body := args[0]
	out := make([]Value, 0, len(items))
	for _, it := range items {
		scope := env.Child()
		scope.Set(param, it)
		v, err := in.Eval(body, scope)
		if err != nil {
			return Null, err
		}
		out = append(out, v)
	}
	return NewArray(out), nil
}

// evalFind returns the first element whose body evaluates truthy, or Null.
func evalFind(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Null, newError(ErrArity, "FIND expects (array, expr, [param])")
	}
	items, err := in.lambdaArray("FIND", args, env)
	if err != nil {
		return Null, err
	}
	return in.findItem(items, args[1:], env)
}

func (in *Interp) findItem(items []Value, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, newError(ErrArity, "find expects (expr, [param])")
	}
	param, err := in.paramName(args, 1, env, "x")
	if err != nil {
		return Null, err
	}
	body := args[0]
	for _, it := range items {
		scope := env.Child()
		scope.Set(param, it)
		hit, err := in.Eval(body, scope)
		if err != nil {
			return Null, err
		}
		if hit.Truthy() {
			return it, nil
		}
	}
	return Null, nil
}

// evalReduce threads the accumulator left to right:
// REDUCE(arr, body, initial, [valueParam], [accParam]).
func evalReduce(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 3 || len(args) > 5 {
		return Null, newError(ErrArity, "REDUCE expects (array, expr, initial, [valParam], [accParam])")
	}
	items, err := in.lambdaArray("REDUCE", args, env)
	if err != nil {
		return Null, err
	}
	return in.reduceItems(items, args[1:], env)
}

func (in *Interp) reduceItems(items []Value, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return Null, newError(ErrArity, "reduce expects (expr, initial, [valParam], [accParam])")
	}
	acc, err := in.Eval(args[1], env)
	if err != nil {
		return Null, err
	}
	valParam, err := in.paramName(args, 2, env, "x")
	if err != nil {
		return Null, err
	}
	accParam, err := in.paramName(args, 3, env, "acc")
	if err != nil {
		return Null, err
	}
	body := args[0]
	for _, it := range items {
		scope := env.Child()
		scope.Set(valParam, it)
		scope.Set(accParam, acc)
		acc, err = in.Eval(body, scope)
		if err != nil {
			return Null, err
		}
	}
	return acc, nil
}

// tryCriterion evaluates a condition argument as a static value; criteria
// mode applies when that succeeds and yields a String or Number. A lambda
// body referencing the element parameter fails this evaluation and falls
// through to lambda mode.
func (in *Interp) tryCriterion(cond compiler.Expr, env *Environment) (criterion, bool) {
	v, err := in.Eval(cond, env)
	if err != nil {
		return criterion{}, false
	}
	return parseCriterion(v)
}

func evalSumIf(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Null, newError(ErrArity, "SUMIF expects (array, criteria, [sum_array])")
	}
	items, err := in.lambdaArray("SUMIF", args, env)
	if err != nil {
		return Null, err
	}

	if crit, ok := in.tryCriterion(args[1], env); ok {
		sumItems := items
		if len(args) == 3 {
			v, err := in.Eval(args[2], env)
			if err != nil {
				return Null, err
			}
			if v.Kind() != KindArray {
				return Null, errf(ErrType, "SUMIF sum_array must be an array, got %s", v.Kind())
			}
			sumItems = v.Items()
		}
		acc := 0.0
		n := len(items)
		if len(sumItems) < n {
			n = len(sumItems)
		}
		for i := 0; i < n; i++ {
			if crit.matches(items[i]) {
				if f, ok := sumItems[i].AsNumber(); ok {
					acc += f
				}
			}
		}
		return NewNumber(acc), nil
	}

	if len(args) != 2 {
		return Null, newError(ErrArity, "lambda-style SUMIF expects exactly (array, expr)")
	}
	body := args[1]
	acc := 0.0
	for _, it := range items {
		scope := env.Child()
		scope.Set("x", it)
		hit, err := in.Eval(body, scope)
		if err != nil {
			return Null, err
		}
		if hit.Truthy() {
			if f, ok := it.AsNumber(); ok {
				acc += f
			}
		}
	}
	return NewNumber(acc), nil
}

func evalAvgIf(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) != 2 {
		return Null, newError(ErrArity, "AVGIF expects (array, expr)")
	}
	items, err := in.lambdaArray("AVGIF", args, env)
	if err != nil {
		return Null, err
	}

	match := func(it Value) (bool, error) {
		scope := env.Child()
		scope.Set("x", it)
		hit, err := in.Eval(args[1], scope)
		if err != nil {
			return false, err
		}
		return hit.Truthy(), nil
	}
	if crit, ok := in.tryCriterion(args[1], env); ok {
		match = func(it Value) (bool, error) { return crit.matches(it), nil }
	}

	acc := 0.0
	count := 0
	for _, it := range items {
		hit, err := match(it)
		if err != nil {
			return Null, err
		}
		if hit {
			if f, ok := it.AsNumber(); ok {
				acc += f
				count++
			}
		}
	}
	if count == 0 {
		return NewNumber(0), nil
	}
	return NewNumber(acc / float64(count)), nil
}

func evalCountIf(in *Interp, args []compiler.Expr, env *Environment) (Value, error) {
	if len(args) != 2 {
		return Null, newError(ErrArity, "COUNTIF expects (array, expr)")
	}
	items, err := in.lambdaArray("COUNTIF", args, env)
	if err != nil {
		return Null, err
	}

	match := func(it Value) (bool, error) {
		scope := env.Child()
		scope.Set("x", it)
		hit, err := in.Eval(args[1], scope)
		if err != nil {
			return false, err
		}
		return hit.Truthy(), nil
	}
	if crit, ok := in.tryCriterion(args[1], env); ok {
		match = func(it Value) (bool, error) { return crit.matches(it), nil }
	}

	count := 0
	for _, it := range items {
		hit, err := match(it)
		if err != nil {
			return Null, err
		}
		if hit {
			count++
		}
	}
	return NewNumber(float64(count)), nil
}
