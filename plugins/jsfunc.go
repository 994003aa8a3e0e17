package plugins

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/zenbakiak/skillet/vm"
)

// ---------------------------------------------------------------------------
// JavaScript hook functions
//
// A hook file declares its metadata in a leading comment block and defines
// a global execute(args) function:
//
//	// @name: DOUBLE
//	// @min_args: 1
//	// @max_args: 1
//	// @description: Doubles a number
//	// @example: DOUBLE(5) returns 10
//	function execute(args) {
//	    return args[0] * 2;
//	}
//
// Each invocation runs in a fresh goja runtime so hooks cannot leak state
// between calls. The host installs httpGet, sqliteQuery and sqliteExec
// into the global scope before the hook executes.
// ---------------------------------------------------------------------------

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ParseJSFunction parses hook source into a registrable descriptor.
// Missing @name or a malformed @min_args makes the file invalid.
func ParseJSFunction(source string) (*Descriptor, error) {
	d := &Descriptor{MinArgs: 1, MaxArgs: -1}
	named := false

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "// @name:"):
			d.Name = strings.TrimSpace(strings.TrimPrefix(line, "// @name:"))
			named = d.Name != ""
		case strings.HasPrefix(line, "// @min_args:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "// @min_args:")))
			if err != nil {
				return nil, vm.NewPluginError("invalid @min_args value")
			}
			d.MinArgs = n
		case strings.HasPrefix(line, "// @max_args:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "// @max_args:"))
			if raw == "unlimited" {
				d.MaxArgs = -1
				break
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, vm.NewPluginError("invalid @max_args value")
			}
			d.MaxArgs = n
		case strings.HasPrefix(line, "// @description:"):
			d.Description = strings.TrimSpace(strings.TrimPrefix(line, "// @description:"))
		case strings.HasPrefix(line, "// @example:"):
			d.Example = strings.TrimSpace(strings.TrimPrefix(line, "// @example:"))
		}
	}

	if !named {
		return nil, vm.NewPluginError("JavaScript function must have a @name annotation")
	}

	d.Fn = func(args []vm.Value) (vm.Value, error) {
		return runJSFunction(source, args)
	}
	return d, nil
}

// runJSFunction executes one hook invocation in a fresh runtime.
func runJSFunction(source string, args []vm.Value) (vm.Value, error) {
	rt := goja.New()
	installHostHelpers(rt)

	if _, err := rt.RunString(source); err != nil {
		return vm.Null, vm.NewPluginError(fmt.Sprintf("JS execution error: %v", err))
	}

	execute, ok := goja.AssertFunction(rt.Get("execute"))
	if !ok {
		return vm.Null, vm.NewPluginError("function 'execute' not found in JS code")
	}

	jsArgs := make([]interface{}, len(args))
	for i, a := range args {
		jsArgs[i] = valueToJS(a)
	}

	result, err := execute(goja.Undefined(), rt.ToValue(jsArgs))
	if err != nil {
		return vm.Null, vm.NewPluginError(fmt.Sprintf("JS function execution failed: %v", err))
	}
	return jsToValue(result.Export())
}

// installHostHelpers exposes the host-side helpers to the script.
func installHostHelpers(rt *goja.Runtime) {
	rt.Set("httpGet", func(url string) string {
		resp, err := httpClient.Get(url)
		if err != nil {
			return fmt.Sprintf("HTTP error: %v", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Sprintf("HTTP error: %v", err)
		}
		return string(body)
	})
	rt.Set("sqliteQuery", func(path, query string) interface{} {
		rows, err := sqliteQuery(path, query)
		if err != nil {
			return fmt.Sprintf("SQLite error: %v", err)
		}
		return rows
	})
	rt.Set("sqliteExec", func(path, statement string) interface{} {
		affected, err := sqliteExec(path, statement)
		if err != nil {
			return fmt.Sprintf("SQLite error: %v", err)
		}
		return affected
	})
}

// valueToJS lowers a Skillet value into the goja object model. Json
// documents cross the boundary as strings, matching the hook contract.
func valueToJS(v vm.Value) interface{} {
	switch v.Kind() {
	case vm.KindNull:
		return nil
	case vm.KindNumber, vm.KindCurrency:
		return v.Num()
	case vm.KindBoolean:
		return v.Bool()
	case vm.KindString, vm.KindJson:
		return v.Str()
	case vm.KindDateTime:
		return float64(v.Timestamp())
	case vm.KindArray:
		out := make([]interface{}, len(v.Items()))
		for i, it := range v.Items() {
			out[i] = valueToJS(it)
		}
		return out
	}
	return nil
}

// jsToValue lifts an exported goja value back into a Skillet value.
// Objects become Json values via serialization.
func jsToValue(data interface{}) (vm.Value, error) {
	switch x := data.(type) {
	case nil:
		return vm.Null, nil
	case bool:
		return vm.NewBool(x), nil
	case int64:
		return vm.NewNumber(float64(x)), nil
	case float64:
		return vm.NewNumber(x), nil
	case string:
		return vm.NewString(x), nil
	case []interface{}:
		items := make([]vm.Value, len(x))
		for i, it := range x {
			v, err := jsToValue(it)
			if err != nil {
				return vm.Null, err
			}
			items[i] = v
		}
		return vm.NewArray(items), nil
	case map[string]interface{}:
		raw, err := json.Marshal(x)
		if err != nil {
			return vm.Null, vm.NewPluginError(fmt.Sprintf("cannot serialize JS object: %v", err))
		}
		return vm.NewJson(string(raw)), nil
	}
	return vm.NewString(fmt.Sprintf("%v", data)), nil
}
