package tablefunc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound indicates no function is registered under a name.
var ErrNotFound = errors.New("table function not found")

// ErrDuplicate indicates a function name is already registered.
var ErrDuplicate = errors.New("table function already registered")

// Registry maps case-insensitive names to functions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry creates a Registry holding fns.
func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{functions: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds fn under its name.
func (r *Registry) Register(fn Function) error {
	key := strings.ToLower(fn.Name())
	if key == "" {
		return fmt.Errorf("register table function: empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.functions[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, fn.Name())
	}
	r.functions[key] = fn
	return nil
}

// Lookup finds a function by name.
func (r *Registry) Lookup(name string) (Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fn, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for _, fn := range r.functions {
		names = append(names, fn.Name())
	}
	sort.Strings(names)
	return names
}

// All returns the registered functions ordered by name.
func (r *Registry) All() []Function {
	names := r.Names()
	out := make([]Function, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		out = append(out, r.functions[strings.ToLower(name)])
	}
	return out
}

// Close closes every registered function and joins their errors.
func (r *Registry) Close() error {
	var errs []error
	for _, fn := range r.All() {
		if err := fn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", fn.Name(), err))
		}
	}
	return errors.Join(errs...)
}
