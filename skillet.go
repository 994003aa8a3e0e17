// Package skillet is an embeddable expression engine modeled on
// spreadsheet formulas with method-chaining ergonomics. It parses a
// textual expression into an AST and evaluates it against a variable
// environment, returning a typed value.
//
//	v, err := skillet.EvaluateWith("= SUM(:sales, 1000)", map[string]vm.Value{
//	    "sales": vm.NewNumber(5000),
//	})
package skillet

import (
	"strings"
	"time"

	"github.com/zenbakiak/skillet/cache"
	"github.com/zenbakiak/skillet/compiler"
	"github.com/zenbakiak/skillet/plugins"
	"github.com/zenbakiak/skillet/vm"
)

// Process-wide engine state: one plugin registry, one result cache, one
// interpreter bound to the registry.
var (
	globalRegistry = plugins.NewRegistry()
	globalCache    = cache.New(cache.DefaultCapacity)
	globalInterp   = vm.New(globalRegistry)
)

// Parse parses an expression (with optional leading '=') into an AST.
func Parse(input string) (compiler.Expr, error) {
	trimmed := strings.TrimLeftFunc(input, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if rest, ok := strings.CutPrefix(trimmed, "="); ok {
		input = rest
	}
	return compiler.Parse(input)
}

// Evaluate parses and evaluates an expression with no variables.
func Evaluate(input string) (vm.Value, error) {
	return EvaluateWith(input, nil)
}

// EvaluateWith parses and evaluates an expression against the given
// variables.
func EvaluateWith(input string, vars map[string]vm.Value) (vm.Value, error) {
	expr, err := Parse(input)
	if err != nil {
		return vm.Null, err
	}
	return EvaluateAST(expr, vars)
}

// EvaluateAST evaluates a previously parsed AST against the given
// variables.
func EvaluateAST(expr compiler.Expr, vars map[string]vm.Value) (vm.Value, error) {
	env := vm.NewEnvironmentFrom(cloneVars(vars))
	return globalInterp.Eval(expr, env)
}

// EvaluateWithAssignments evaluates an expression and additionally returns
// the final variable bindings, including any ':name := expr' assignments
// made during evaluation.
func EvaluateWithAssignments(input string, vars map[string]vm.Value) (vm.Value, map[string]vm.Value, error) {
	expr, err := Parse(input)
	if err != nil {
		return vm.Null, nil, err
	}
	env := vm.NewEnvironmentFrom(cloneVars(vars))
	result, err := globalInterp.Eval(expr, env)
	if err != nil {
		return vm.Null, nil, err
	}
	return result, env.Snapshot(), nil
}

// EvaluateCached evaluates through the process-wide result cache. Only
// successful evaluations are stored; a hit returns the cached value
// without re-evaluation.
func EvaluateCached(input string, vars map[string]vm.Value) (vm.Value, error) {
	key, err := cache.Fingerprint(input, vars)
	if err != nil {
		// Arguments that cannot be canonicalized bypass the cache.
		return EvaluateWith(input, vars)
	}
	if v, ok := globalCache.Get(key); ok {
		return v, nil
	}
	start := time.Now()
	v, err := EvaluateWith(input, vars)
	if err != nil {
		return vm.Null, err
	}
	globalCache.Put(key, v, float64(time.Since(start).Microseconds())/1000.0)
	return v, nil
}

// EvaluateWithJSON evaluates an expression with variables supplied as a
// flat JSON object.
func EvaluateWithJSON(input, jsonVars string) (vm.Value, error) {
	vars, err := VariablesFromJSON(jsonVars)
	if err != nil {
		return vm.Null, err
	}
	return EvaluateWith(input, vars)
}

// RegisterPlugin installs a custom function. The result cache is cleared:
// cached values are only valid for an unchanged registry.
func RegisterPlugin(d *plugins.Descriptor) error {
	if err := globalRegistry.Register(d); err != nil {
		return err
	}
	globalCache.Clear()
	return nil
}

// UnregisterPlugin removes a custom function by name and clears the result
// cache when it existed.
func UnregisterPlugin(name string) bool {
	ok := globalRegistry.Unregister(name)
	if ok {
		globalCache.Clear()
	}
	return ok
}

// ListPlugins returns the registered plugin names in sorted order.
func ListPlugins() []string {
	return globalRegistry.List()
}

// Registry exposes the process-wide plugin registry (used by the servers'
// admin surface).
func Registry() *plugins.Registry {
	return globalRegistry
}

// CacheStats returns a snapshot of the result cache counters.
func CacheStats() cache.Stats {
	return globalCache.Snapshot()
}

// ClearCache drops all cached results.
func ClearCache() {
	globalCache.Clear()
}

func cloneVars(vars map[string]vm.Value) map[string]vm.Value {
	out := make(map[string]vm.Value, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}
