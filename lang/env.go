package lang

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
)

// unset marks a name that was declared without a value.
type unset struct{}

// Environment is one scope of name to value bindings. Scopes are linked
// to their parent; lookups and assignments walk the chain outward.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	parent *Environment
	vars   map[string]any
}

// NewEnvironment returns an empty root environment.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]any)}
}

// Child returns a new scope whose parent is e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]any)}
}

// Parent returns the enclosing scope, or nil for a root environment.
func (e *Environment) Parent() *Environment { return e.parent }

// owner returns the nearest scope in the chain that binds name.
func (e *Environment) owner(name string) *Environment {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			return s
		}
	}

	return nil
}

// Exists reports whether name is bound anywhere in the chain.
func (e *Environment) Exists(name string) bool { return e.owner(name) != nil }

// Has reports whether name is bound in this scope, ignoring parents.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]

	return ok
}

// Get returns the value bound to name anywhere in the chain. The second
// result is false if the name is not bound or has no value yet.
func (e *Environment) Get(name string) (any, bool) {
	v, err := e.Lookup(name)

	return v, err == nil
}

// Lookup returns the value bound to name anywhere in the chain.
func (e *Environment) Lookup(name string) (any, error) {
	s := e.owner(name)
	if s == nil {
		return nil, ErrUndefined.With(slog.String("name", name)).
			Wrapf("%q is not declared", name)
	}

	v := s.vars[name]
	if _, ok := v.(unset); ok {
		return nil, ErrUnset.With(slog.String("name", name)).
			Wrapf("%q is declared but was never assigned", name)
	}

	return v, nil
}

// Declare binds name in this scope. It fails if name is already bound
// anywhere in the chain, so an inner scope can never shadow an outer one.
// A nil value declares the name without a value.
func (e *Environment) Declare(name string, value any) error {
	if e.Exists(name) {
		return ErrDeclared.With(slog.String("name", name)).
			Wrapf("%q is already declared", name)
	}

	if value == nil {
		value = unset{}
	}

	e.vars[name] = value

	return nil
}

// Set assigns value to the scope that binds name.
func (e *Environment) Set(name string, value any) error {
	if value == nil {
		return ErrAbsentValue.With(slog.String("name", name))
	}

	s := e.owner(name)
	if s == nil {
		return ErrUndefined.With(slog.String("name", name)).
			Wrapf("%q is not declared", name)
	}

	s.vars[name] = value

	return nil
}

// Expose moves the binding of name from this scope into its parent.
// The name must be bound in this scope and not in the parent.
func (e *Environment) Expose(name string) error {
	err := ErrExpose.With(slog.String("name", name))

	v, ok := e.vars[name]

	switch {
	case !ok:
		return err.Wrapf("%q is not declared in the current scope", name)
	case e.parent == nil:
		return err.Wrapf("%q is in the outermost scope", name)
	case e.parent.Has(name):
		return err.Wrapf("%q is already declared in the enclosing scope", name)
	}

	e.parent.vars[name] = v
	delete(e.vars, name)

	return nil
}

// Names returns the names bound in this scope in sorted order.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// All iterates over the bindings of this scope in name order. Names
// declared without a value are skipped.
func (e *Environment) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range e.Names() {
			v := e.vars[name]
			if _, ok := v.(unset); ok {
				continue
			}

			if !yield(name, v) {
				return
			}
		}
	}
}

// Visible returns every name reachable from this scope, sorted.
func (e *Environment) Visible() []string {
	seen := make(map[string]struct{})
	for s := e; s != nil; s = s.parent {
		for name := range s.vars {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Snapshot returns a copy of this scope's assigned bindings.
func (e *Environment) Snapshot() map[string]any {
	m := make(map[string]any, len(e.vars))
	for name, v := range e.All() {
		m[name] = v
	}

	return m
}
