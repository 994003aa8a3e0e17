package vm

import (
	"encoding/json"
	"sort"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Json methods
// ---------------------------------------------------------------------------

func jsonObject(recv Value) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(recv.Str()), &obj); err != nil {
		return nil, errf(ErrEval, "invalid JSON object: %v", err)
	}
	return obj, nil
}

func registerJSONMethods() {
	// keys returns the object's keys sorted for a stable order.
	registerMethod(KindJson, "keys", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 0 {
			return Null, newError(ErrArity, "keys takes no arguments")
		}
		obj, err := jsonObject(recv)
		if err != nil {
			return Null, err
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = NewString(k)
		}
		return NewArray(items), nil
	})

	registerMethod(KindJson, "values", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) > 0 {
			return Null, newError(ErrArity, "values takes no arguments")
		}
		obj, err := jsonObject(recv)
		if err != nil {
			return Null, err
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]Value, len(keys))
		for i, k := range keys {
			v, err := FromJSONInterface(obj[k])
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return NewArray(items), nil
	})

	hasKeyFn := func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) != 1 {
			return Null, newError(ErrArity, "has_key expects (key)")
		}
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return Null, err
		}
		if vals[0].Kind() != KindString {
			return Null, errf(ErrType, "has_key expects a string key, got %s", vals[0].Kind())
		}
		obj, err := jsonObject(recv)
		if err != nil {
			return Null, err
		}
		_, ok := obj[vals[0].Str()]
		return NewBool(ok), nil
	}
	registerMethod(KindJson, "has_key", hasKeyFn)
	registerMethod(KindJson, "has", hasKeyFn)

	// dig(path, [default]) walks keys and indices like the DIG builtin.
	registerMethod(KindJson, "dig", func(in *Interp, recv Value, args []compiler.Expr, env *Environment) (Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return Null, newError(ErrArity, "dig expects (path, [default])")
		}
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return Null, err
		}
		var path []Value
		if vals[0].Kind() == KindArray {
			path = vals[0].Items()
		} else {
			path = []Value{vals[0]}
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(recv.Str()), &doc); err != nil {
			return Null, errf(ErrEval, "invalid JSON: %v", err)
		}
		found, ok := digPath(doc, path)
		if !ok {
			if len(vals) > 1 {
				return vals[1], nil
			}
			return Null, nil
		}
		return FromJSONInterface(found)
	})
}
