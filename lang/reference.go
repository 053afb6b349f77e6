package lang

import (
	"log/slog"
)

// Reference is an assignable location: a named variable in an
// environment, or a field or element of the value behind another
// reference.
type Reference struct {
	env     *Environment
	name    string
	declare bool

	parent   *Reference
	selector any
	indexed  bool
	access   Access
}

// NamedReference returns a reference to name in env.
func NamedReference(env *Environment, name string) *Reference {
	return &Reference{env: env, name: name}
}

// derive returns a reference to the field or element selected from the
// value behind r.
func (r *Reference) derive(selector any, indexed bool, access Access) *Reference {
	return &Reference{parent: r, selector: selector, indexed: indexed, access: access}
}

// Name returns the variable name of a named reference, or the empty
// string for a derived one.
func (r *Reference) Name() string { return r.name }

// String describes the location, e.g. "a.b[0]".
func (r *Reference) String() string {
	if r.parent == nil {
		return r.name
	}

	if r.indexed {
		return r.parent.String() + "[" + stringify(r.selector) + "]"
	}

	return r.parent.String() + "." + stringify(r.selector)
}

// Read returns the current value at the location.
func (r *Reference) Read() (any, error) {
	if r.parent == nil {
		return r.env.Lookup(r.name)
	}

	obj, err := r.parent.Read()
	if err != nil {
		return nil, err
	}

	sel, err := r.checkSelector()
	if err != nil {
		return nil, err
	}

	v, err := r.access.Get(obj, sel)
	if err != nil {
		return nil, r.accessError(err)
	}

	return v, nil
}

// Assign stores value at the location. Named references marked as a
// declaration bind a new name instead of updating an existing one.
func (r *Reference) Assign(value any) error {
	if value == nil {
		return ErrAbsentValue.With(slog.String("target", r.String()))
	}

	if r.parent == nil {
		if r.declare {
			return r.env.Declare(r.name, value)
		}

		return r.env.Set(r.name, value)
	}

	obj, err := r.parent.Read()
	if err != nil {
		return err
	}

	sel, err := r.checkSelector()
	if err != nil {
		return err
	}

	if err := r.access.Set(obj, sel, value); err != nil {
		return r.accessError(err)
	}

	return nil
}

// checkSelector converts an index selector to int and verifies a field
// selector is a string.
func (r *Reference) checkSelector() (any, error) {
	if r.indexed {
		i, ok := toIndex(r.selector)
		if !ok {
			return nil, ErrAccess.
				With(
					slog.String("target", r.String()),
					slog.String("selector", RankOf(r.selector).String()),
				).
				Wrapf("index must be an integer, found %s", RankOf(r.selector))
		}

		return i, nil
	}

	s, ok := r.selector.(string)
	if !ok {
		return nil, ErrAccess.
			With(
				slog.String("target", r.String()),
				slog.String("selector", RankOf(r.selector).String()),
			).
			Wrapf("field name must be a string, found %s", RankOf(r.selector))
	}

	return s, nil
}

func (r *Reference) accessError(err error) error {
	if e := WrapError(err); e.Is(ErrAccess) {
		return e.With(slog.String("target", r.String()))
	}

	return ErrAccess.With(slog.String("target", r.String())).Wrap(err)
}

// deref replaces a reference with the value it currently holds.
func deref(v any) (any, error) {
	if r, ok := v.(*Reference); ok {
		return r.Read()
	}

	return v, nil
}

func derefAll(args []any) ([]any, error) {
	out := make([]any, len(args))

	for i, a := range args {
		v, err := deref(a)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}
