// Package plugins implements the Skillet user-function registry and the
// JavaScript hook mechanism that feeds it.
package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zenbakiak/skillet/vm"
)

// Handler executes a plugin over evaluated arguments.
type Handler func(args []vm.Value) (vm.Value, error)

// Descriptor declares a registered function. MaxArgs of -1 means
// unlimited.
type Descriptor struct {
	Name        string
	MinArgs     int
	MaxArgs     int
	Description string
	Example     string
	Fn          Handler
}

// Registry maps upper-cased function names to handlers. Lookup precedes
// the builtin catalog during evaluation, so a plugin can intentionally
// override a builtin. Registration and removal are atomic with respect to
// concurrent evaluations.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]*Descriptor)}
}

// Register installs a descriptor, replacing any existing entry of the same
// name.
func (r *Registry) Register(d *Descriptor) error {
	name := strings.ToUpper(strings.TrimSpace(d.Name))
	if name == "" {
		return vm.NewPluginError("function name cannot be empty")
	}
	if d.MaxArgs >= 0 && d.MinArgs > d.MaxArgs {
		return vm.NewPluginError("min_args cannot be greater than max_args")
	}
	if d.Fn == nil {
		return vm.NewPluginError("function has no handler")
	}
	clone := *d
	clone.Name = name
	r.mu.Lock()
	r.fns[name] = &clone
	r.mu.Unlock()
	return nil
}

// Unregister removes one entry by name, reporting whether it existed.
func (r *Registry) Unregister(name string) bool {
	key := strings.ToUpper(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.fns[key]
	delete(r.fns, key)
	return ok
}

// Has reports whether name resolves to a plugin.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fns[strings.ToUpper(name)]
	return ok
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.fns[strings.ToUpper(name)]
	return d, ok
}

// Call validates arity and executes the named plugin.
func (r *Registry) Call(name string, args []vm.Value) (vm.Value, error) {
	d, ok := r.Get(name)
	if !ok {
		return vm.Null, vm.NewPluginError("unknown custom function: " + name)
	}
	if len(args) < d.MinArgs {
		return vm.Null, vm.NewArityError(fmt.Sprintf("%s expects at least %d argument(s), got %d", d.Name, d.MinArgs, len(args)))
	}
	if d.MaxArgs >= 0 && len(args) > d.MaxArgs {
		return vm.Null, vm.NewArityError(fmt.Sprintf("%s expects at most %d argument(s), got %d", d.Name, d.MaxArgs, len(args)))
	}
	return d.Fn(args)
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns)
}
