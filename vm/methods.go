package vm

import (
	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Method dispatch: value.name(args) and value.name?
//
// Resolution is by the receiver's concrete kind through a static per-kind
// table; every kind additionally sees the universal conversion methods. On
// a Null receiver only the conversions and the universal predicates (nil?,
// blank?, present?, numeric?, array?) resolve; anything else is
// a NullMethod error unless reached through safe navigation.
// ---------------------------------------------------------------------------

// methodFunc handles one method. Argument expressions arrive unevaluated so
// the functional methods can treat them as lambda bodies.
type methodFunc func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error)

// predicateFunc handles one 'name?' predicate.
type predicateFunc func(recv Value) bool

var (
	methodTables    = map[Kind]map[string]methodFunc{}
	predicateTables = map[Kind]map[string]predicateFunc{}
)

func registerMethod(kind Kind, name string, fn methodFunc) {
	table, ok := methodTables[kind]
	if !ok {
		table = map[string]methodFunc{}
		methodTables[kind] = table
	}
	table[name] = fn
}

func registerPredicate(kind Kind, name string, fn predicateFunc) {
	table, ok := predicateTables[kind]
	if !ok {
		table = map[string]predicateFunc{}
		predicateTables[kind] = table
	}
	table[name] = fn
}

// methodKind folds Currency onto the Number method table.
func methodKind(v Value) Kind {
	if v.Kind() == KindCurrency {
		return KindNumber
	}
	return v.Kind()
}

// universalPredicates resolve on any receiver kind.
var universalPredicates = map[string]predicateFunc{
	"nil":     func(v Value) bool { return v.IsNull() },
	"blank":   func(v Value) bool { return v.IsBlank() },
	"present": func(v Value) bool { return !v.IsBlank() },
	"numeric": func(v Value) bool { return v.Kind() == KindNumber || v.Kind() == KindCurrency },
	"array":   func(v Value) bool { return v.Kind() == KindArray },
}

// conversionMethods are available on every kind, including Null.
var conversionMethods = map[string]func(v Value) (Value, error){
	"to_s": func(v Value) (Value, error) { return NewString(v.Format()), nil },
	"to_i": func(v Value) (Value, error) {
		n, err := toInt(v)
		if err != nil {
			return Null, err
		}
		return NewNumber(n), nil
	},
	"to_f": func(v Value) (Value, error) {
		n, err := toFloat(v)
		if err != nil {
			return Null, err
		}
		return NewNumber(n), nil
	},
	"to_a": func(v Value) (Value, error) { return toArray(v), nil },
	"to_json": func(v Value) (Value, error) {
		text, err := toJSONText(v)
		if err != nil {
			return Null, err
		}
		return NewJson(text), nil
	},
	"to_bool": func(v Value) (Value, error) { return NewBool(toBool(v)), nil },
}

var conversionAliases = map[string]string{
	"to_string":  "to_s",
	"to_int":     "to_i",
	"to_float":   "to_f",
	"to_array":   "to_a",
	"to_boolean": "to_bool",
}

func lookupConversion(name string) (func(v Value) (Value, error), bool) {
	if canonical, ok := conversionAliases[name]; ok {
		name = canonical
	}
	fn, ok := conversionMethods[name]
	return fn, ok
}

func init() {
	registerNumberMethods()
	registerStringMethods()
	registerArrayMethods()
	registerJSONMethods()
}

// execMethod dispatches a method or predicate call on an evaluated
// receiver.
func (in *Interp) execMethod(recv Value, call *compiler.MethodCall, env *Environment) (Value, error) {
	name := call.Name

	if call.Predicate {
		if table, ok := predicateTables[methodKind(recv)]; ok {
			if fn, ok := table[name]; ok {
				return NewBool(fn(recv)), nil
			}
		}
		if fn, ok := universalPredicates[name]; ok {
			return NewBool(fn(recv)), nil
		}
		if recv.IsNull() {
			return Null, errf(ErrNullMethod, "predicate %s? on Null", name)
		}
		return Null, errf(ErrEval, "unknown predicate method: %s?", name)
	}

	if recv.IsNull() {
		if fn, ok := lookupConversion(name); ok {
			return fn(recv)
		}
		return Null, errf(ErrNullMethod, "method %s() on Null", name)
	}

	if table, ok := methodTables[methodKind(recv)]; ok {
		if fn, ok := table[name]; ok {
			return fn(in, recv, call.Args, env)
		}
	}
	if fn, ok := lookupConversion(name); ok {
		if len(call.Args) > 0 {
			return Null, errf(ErrArity, "%s takes no arguments", name)
		}
		return fn(recv)
	}
	return Null, errf(ErrEval, "unknown method: .%s() on %s", name, recv.Kind())
}
