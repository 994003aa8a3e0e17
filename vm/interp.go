package vm

import (
	"encoding/json"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Interp: the tree-walking evaluator
// ---------------------------------------------------------------------------

// PluginCaller resolves user-registered functions. Lookup precedes the
// builtin catalog, so a plugin may intentionally shadow a builtin.
// Implementations must be safe for concurrent use.
type PluginCaller interface {
	Has(name string) bool
	Call(name string, args []Value) (Value, error)
}

// Interp evaluates parsed expressions. The zero value is usable; Plugins
// may be nil.
type Interp struct {
	Plugins PluginCaller
}

// New creates an interpreter with an optional plugin registry.
func New(plugins PluginCaller) *Interp {
	return &Interp{Plugins: plugins}
}

// Eval evaluates an expression against an environment. The environment is
// mutated by assignments; callers wanting isolation pass a fresh one.
func (in *Interp) Eval(expr compiler.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *compiler.NumberLit:
		return NewNumber(e.Value), nil

	case *compiler.StringLit:
		return NewString(e.Value), nil

	case *compiler.BoolLit:
		return NewBool(e.Value), nil

	case *compiler.NullLit:
		return Null, nil

	case *compiler.Variable:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		return Null, errf(ErrMissingVariable, "missing variable: :%s", e.Name)

	case *compiler.Assign:
		v, err := in.Eval(e.Value, env)
		if err != nil {
			return Null, err
		}
		env.Set(e.Name, v)
		return v, nil

	case *compiler.Sequence:
		last := Null
		for _, sub := range e.Exprs {
			v, err := in.Eval(sub, env)
			if err != nil {
				return Null, err
			}
			last = v
		}
		return last, nil

	case *compiler.Unary:
		return in.evalUnary(e, env)

	case *compiler.Binary:
		return in.evalBinary(e, env)

	case *compiler.Ternary:
		cond, err := in.Eval(e.Cond, env)
		if err != nil {
			return Null, err
		}
		if cond.Truthy() {
			return in.Eval(e.Then, env)
		}
		return in.Eval(e.Else, env)

	case *compiler.ArrayLit:
		items, err := in.evalArgs(e.Items, env)
		if err != nil {
			return Null, err
		}
		return NewArray(items), nil

	case *compiler.ObjectLit:
		return in.evalObjectLit(e, env)

	case *compiler.Index:
		return in.evalIndex(e, env)

	case *compiler.Slice:
		return in.evalSlice(e, env)

	case *compiler.Cast:
		v, err := in.Eval(e.Target, env)
		if err != nil {
			return Null, err
		}
		res, err := CastValue(v, e.Type)
		return res, at(err, e.Pos)

	case *compiler.Call:
		return in.evalCall(e, env)

	case *compiler.MethodCall:
		recv, err := in.Eval(e.Target, env)
		if err != nil {
			return Null, err
		}
		if e.Safe && recv.IsNull() {
			return Null, nil
		}
		res, err := in.execMethod(recv, e, env)
		return res, at(err, e.Pos)

	case *compiler.PropertyAccess:
		recv, err := in.Eval(e.Target, env)
		if err != nil {
			return Null, err
		}
		res, err := in.evalProperty(recv, e)
		return res, at(err, e.Pos)

	case *compiler.Spread:
		return Null, at(newError(ErrEval, "spread not allowed here"), e.Pos)
	}
	return Null, newError(ErrEval, "unknown expression node")
}

func (in *Interp) evalUnary(e *compiler.Unary, env *Environment) (Value, error) {
	v, err := in.Eval(e.Operand, env)
	if err != nil {
		return Null, err
	}
	switch e.Op {
	case compiler.UnaryPlus, compiler.UnaryMinus:
		n, ok := v.Numeric()
		if !ok {
			return Null, at(errf(ErrType, "unary sign on %s", v.Kind()), e.Pos)
		}
		if e.Op == compiler.UnaryMinus {
			n = -n
		}
		if v.Kind() == KindCurrency {
			return NewCurrency(n), nil
		}
		return NewNumber(n), nil
	case compiler.UnaryNot:
		return NewBool(!v.Truthy()), nil
	}
	return Null, newError(ErrEval, "unknown unary operator")
}

func (in *Interp) evalBinary(e *compiler.Binary, env *Environment) (Value, error) {
	// Logical operators short-circuit; the skipped operand is never
	// evaluated.
	if e.Op == compiler.OpAnd || e.Op == compiler.OpOr {
		lhs, err := in.Eval(e.Lhs, env)
		if err != nil {
			return Null, err
		}
		lt := lhs.Truthy()
		if e.Op == compiler.OpAnd && !lt {
			return NewBool(false), nil
		}
		if e.Op == compiler.OpOr && lt {
			return NewBool(true), nil
		}
		rhs, err := in.Eval(e.Rhs, env)
		if err != nil {
			return Null, err
		}
		return NewBool(rhs.Truthy()), nil
	}

	lhs, err := in.Eval(e.Lhs, env)
	if err != nil {
		return Null, err
	}
	rhs, err := in.Eval(e.Rhs, env)
	if err != nil {
		return Null, err
	}

	switch e.Op {
	case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod, compiler.OpPow:
		res, err := evalArithmetic(e.Op, lhs, rhs)
		return res, at(err, e.Pos)
	default:
		res, err := evalComparison(e.Op, lhs, rhs)
		return res, at(err, e.Pos)
	}
}

func (in *Interp) evalObjectLit(e *compiler.ObjectLit, env *Environment) (Value, error) {
	obj := make(map[string]interface{}, len(e.Entries))
	for _, entry := range e.Entries {
		v, err := in.Eval(entry.Value, env)
		if err != nil {
			return Null, err
		}
		conv, err := v.ToJSONInterface()
		if err != nil {
			return Null, err
		}
		obj[entry.Key] = conv
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return Null, errf(ErrEval, "cannot serialize object literal: %v", err)
	}
	return NewJson(string(raw)), nil
}

func (in *Interp) evalIndex(e *compiler.Index, env *Environment) (Value, error) {
	recv, err := in.Eval(e.Target, env)
	if err != nil {
		return Null, err
	}
	idxV, err := in.Eval(e.Idx, env)
	if err != nil {
		return Null, err
	}
	n, ok := idxV.AsNumber()
	if !ok {
		return Null, at(newError(ErrIndex, "index must be a number"), e.Pos)
	}
	switch recv.Kind() {
	case KindArray:
		items := recv.Items()
		idx := int(n)
		if idx < 0 {
			idx += len(items)
		}
		if idx < 0 || idx >= len(items) {
			// Out-of-range array indexing yields Null, not an error.
			return Null, nil
		}
		return items[idx], nil
	case KindString:
		return Null, at(newError(ErrIndex, "indexing not supported on String"), e.Pos)
	}
	return Null, at(errf(ErrType, "indexing not supported on %s", recv.Kind()), e.Pos)
}

func (in *Interp) evalSlice(e *compiler.Slice, env *Environment) (Value, error) {
	recv, err := in.Eval(e.Target, env)
	if err != nil {
		return Null, err
	}
	if recv.Kind() != KindArray {
		return Null, at(errf(ErrType, "slicing not supported on %s", recv.Kind()), e.Pos)
	}
	items := recv.Items()
	length := len(items)

	bound := func(expr compiler.Expr, fallback int) (int, error) {
		if expr == nil {
			return fallback, nil
		}
		v, err := in.Eval(expr, env)
		if err != nil {
			return 0, err
		}
		n, ok := v.AsNumber()
		if !ok {
			return 0, at(newError(ErrIndex, "slice bounds must be numbers"), e.Pos)
		}
		i := int(n)
		if i < 0 {
			i += length
		}
		if i < 0 {
			i = 0
		}
		if i > length {
			i = length
		}
		return i, nil
	}

	start, err := bound(e.Start, 0)
	if err != nil {
		return Null, err
	}
	end, err := bound(e.End, length)
	if err != nil {
		return Null, err
	}
	if start > end {
		return NewArray(nil), nil
	}
	out := make([]Value, end-start)
	copy(out, items[start:end])
	return NewArray(out), nil
}

func (in *Interp) evalProperty(recv Value, e *compiler.PropertyAccess) (Value, error) {
	switch recv.Kind() {
	case KindNull:
		if e.Safe {
			return Null, nil
		}
		return Null, errf(ErrNullMethod, "property access %q on Null", e.Name)
	case KindJson:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(recv.Str()), &parsed); err != nil {
			return Null, errf(ErrEval, "invalid JSON: %v", err)
		}
		raw, ok := parsed[e.Name]
		if !ok {
			if e.Safe {
				return Null, nil
			}
			return Null, errf(ErrEval, "property %q not found in JSON object", e.Name)
		}
		return FromJSONInterface(raw)
	}
	return Null, errf(ErrType, "property access requires a JSON object, got %s", recv.Kind())
}

// evalArgs evaluates an argument or element list, splicing spread arrays in
// place.
func (in *Interp) evalArgs(exprs []compiler.Expr, env *Environment) ([]Value, error) {
	out := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		if sp, ok := e.(*compiler.Spread); ok {
			v, err := in.Eval(sp.Inner, env)
			if err != nil {
				return nil, err
			}
			if v.Kind() != KindArray {
				return nil, at(errf(ErrType, "spread expects an array, got %s", v.Kind()), sp.Pos)
			}
			out = append(out, v.Items()...)
			continue
		}
		v, err := in.Eval(e, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// evalCall resolves a function call: plugin registry first, then the
// higher-order builtins (which receive raw subexpressions), then the
// builtin catalog.
func (in *Interp) evalCall(e *compiler.Call, env *Environment) (Value, error) {
	if in.Plugins != nil && in.Plugins.Has(e.Name) {
		args, err := in.evalArgs(e.Args, env)
		if err != nil {
			return Null, err
		}
		res, err := in.Plugins.Call(e.Name, args)
		return res, at(err, e.Pos)
	}

	if fn, ok := higherOrderBuiltins[e.Name]; ok {
		res, err := fn(in, e.Args, env)
		return res, at(err, e.Pos)
	}

	entry, ok := lookupBuiltin(e.Name)
	if !ok {
		return Null, at(errf(ErrEval, "unknown function: %s", e.Name), e.Pos)
	}
	args, err := in.evalArgs(e.Args, env)
	if err != nil {
		return Null, err
	}
	if err := entry.checkArity(e.Name, len(args)); err != nil {
		return Null, at(err, e.Pos)
	}
	res, err := entry.fn(args)
	return res, at(err, e.Pos)
}
