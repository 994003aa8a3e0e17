package skillet

import (
	"encoding/json"
	"fmt"

	"github.com/zenbakiak/skillet/vm"
)

// VariablesFromJSON decodes a flat JSON object into a variable map with
// automatic type inference: numbers, booleans, strings and arrays map onto
// their Skillet kinds; nested objects become Json values.
func VariablesFromJSON(jsonVars string) (map[string]vm.Value, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(jsonVars), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	vars := make(map[string]vm.Value, len(raw))
	for name, data := range raw {
		v, err := vm.FromJSONInterface(data)
		if err != nil {
			return nil, fmt.Errorf("converting variable %q: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// ValueToJSON lowers a result value to the encoding/json object model for
// wire responses. Json documents are embedded as parsed structures, not
// re-quoted strings.
func ValueToJSON(v vm.Value) (interface{}, error) {
	return v.ToJSONInterface()
}
