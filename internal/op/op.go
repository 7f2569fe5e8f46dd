package op

import (
	"fmt"
	"sort"
	"sync"
)

// Func is a pure string operation. The registry guarantees it is called
// with exactly as many arguments as its declared arity.
type Func func(args []string) (string, error)

// Operation pairs an implementation with its declared arity.
type Operation struct {
	Arity int
	Fn    Func
}

// Registry maps operation names to their implementations.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds an operation. Panics on duplicate name to surface misconfiguration early.
func (r *Registry) Register(name string, arity int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[name]; exists {
		panic(fmt.Sprintf("op registry: duplicate operation %q", name))
	}
	r.ops[name] = Operation{Arity: arity, Fn: fn}
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.ops[name]
	return o, ok
}

// Invoke calls the named operation with args.
// Arity is validated at graph construction time; a mismatch here means the
// caller bypassed that validation, so it is reported as an error rather
// than silently truncating or padding arguments.
func (r *Registry) Invoke(name string, args []string) (string, error) {
	o, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("no operation registered for %q", name)
	}
	if len(args) != o.Arity {
		return "", fmt.Errorf("operation %q wants %d args, got %d", name, o.Arity, len(args))
	}
	return o.Fn(args)
}

// Names returns all registered operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ops))
	for k := range r.ops {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
