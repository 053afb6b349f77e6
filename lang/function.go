package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function is a host-registered callable. Arguments arrive evaluated and
// dereferenced, in call order.
type Function func(ctx context.Context, args ...any) (any, error)

// Registry resolves function names to callables. Names are matched
// case-insensitively. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// Register binds name to fn, replacing any previous binding, and returns r
// for chaining.
func (r *Registry) Register(name string, fn Function) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[strings.ToLower(name)] = fn

	return r
}

// Resolve returns the function bound to name.
func (r *Registry) Resolve(name string) (Function, error) {
	r.mu.RLock()
	fn, ok := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrFunctionNotFound.With(slog.String("name", name)).
			Wrapf("no function named %q", name)
	}

	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.funcs))
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Registry{funcs: maps.Clone(r.funcs)}
}
