package vm

import (
	"encoding/json"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// ---------------------------------------------------------------------------
// JSON builtins
// ---------------------------------------------------------------------------

// digPath walks a parsed JSON document along a path of string keys and
// numeric indices. The boolean result reports whether the full path
// resolved.
func digPath(doc interface{}, path []Value) (interface{}, bool) {
	cur := doc
	for _, seg := range path {
		switch seg.Kind() {
		case KindString:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil, false
			}
			next, ok := obj[seg.Str()]
			if !ok {
				return nil, false
			}
			cur = next
		case KindNumber, KindCurrency:
			arr, ok := cur.([]interface{})
			if !ok {
				return nil, false
			}
			idx := int(seg.Num())
			if idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func registerJSONBuiltins() {
	// DIG(json, path_array, [default]) traverses by keys and indexes; an
	// unresolvable path yields the default (or Null).
	registerBuiltin("DIG", 2, 3, func(args []Value) (Value, error) {
		if args[0].Kind() != KindJson {
			return Null, errf(ErrType, "DIG expects a JSON object, got %s", args[0].Kind())
		}
		path, err := argArray("DIG", args, 1)
		if err != nil {
			return Null, err
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(args[0].Str()), &doc); err != nil {
			return Null, errf(ErrEval, "invalid JSON: %v", err)
		}
		found, ok := digPath(doc, path)
		if !ok {
			if len(args) > 2 {
				return args[2], nil
			}
			return Null, nil
		}
		return FromJSONInterface(found)
	})

	// JQ(json, jsonpath) returns the matches of a JSONPath query. A single
	// match is unwrapped so it can feed arithmetic directly; no matches
	// yield an empty array.
	registerBuiltin("JQ", 2, 2, func(args []Value) (Value, error) {
		pathExpr, err := argString("JQ", args, 1)
		if err != nil {
			return Null, err
		}
		if !strings.HasPrefix(pathExpr, "$") {
			return Null, newError(ErrEval, "JQ path must be a JSONPath expression starting with $")
		}
		doc, err := args[0].ToJSONInterface()
		if err != nil {
			return Null, err
		}
		result, err := jsonpath.Get(pathExpr, doc)
		if err != nil {
			return Null, errf(ErrEval, "JSONPath error: %v", err)
		}
		value, err := FromJSONInterface(result)
		if err != nil {
			return Null, err
		}
		switch {
		case value.IsNull():
			return NewArray(nil), nil
		case value.Kind() == KindArray && len(value.Items()) == 1:
			return value.Items()[0], nil
		}
		return value, nil
	})
}
