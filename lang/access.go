package lang

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/expr-lang/expr/vm/runtime"
)

// Access reads and writes members of opaque host objects. The selector
// is an int for element access or a string for field access.
type Access interface {
	Get(obj, selector any) (any, error)
	Set(obj, selector, value any) error
}

// HostAccess is the default [Access]. It reads through expr-lang's
// runtime.Fetch (maps, slices, arrays, strings, structs and pointers to
// them) and writes with reflection.
type HostAccess struct{}

// Get returns the selected member of obj.
func (HostAccess) Get(obj, selector any) (v any, err error) {
	if obj == nil {
		return nil, ErrAccess.Wrapf("cannot select %v from absent value", selector)
	}

	rv := reflect.Indirect(reflect.ValueOf(obj))
	if rv.Kind() == reflect.Map {
		key, err := mapKey(rv, selector)
		if err != nil {
			return nil, err
		}

		elem := rv.MapIndex(key)
		if !elem.IsValid() {
			return nil, ErrAccess.With(slog.Any("key", selector)).
				Wrapf("no key %v in %T", selector, obj)
		}

		return elem.Interface(), nil
	}

	if i, ok := selector.(int); ok && i < 0 {
		return nil, ErrAccess.With(slog.Int("index", i)).
			Wrapf("index %d out of range", i)
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = nil, ErrAccess.With(slog.Any("selector", selector)).
				Wrapf("%v", r)
		}
	}()

	return runtime.Fetch(obj, selector), nil
}

// Set stores value into the selected member of obj. Structs, arrays and
// scalars must be reachable through a pointer to be settable.
func (HostAccess) Set(obj, selector, value any) error {
	if obj == nil {
		return ErrAccess.Wrapf("cannot select %v from absent value", selector)
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ErrAccess.Wrapf("cannot select %v from nil %T", selector, obj)
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return ErrAccess.Wrapf("cannot assign %v into nil %T", selector, obj)
		}

		key, err := mapKey(rv, selector)
		if err != nil {
			return err
		}

		val, err := assignable(value, rv.Type().Elem())
		if err != nil {
			return err
		}

		rv.SetMapIndex(key, val)

		return nil

	case reflect.Slice, reflect.Array:
		i, ok := selector.(int)
		if !ok {
			return ErrAccess.Wrapf("index must be an integer, found %T", selector)
		}

		if i < 0 || i >= rv.Len() {
			return ErrAccess.With(slog.Int("index", i), slog.Int("len", rv.Len())).
				Wrapf("index %d out of range", i)
		}

		elem := rv.Index(i)
		if !elem.CanSet() {
			return ErrAccess.Wrapf("element %d of %T is not settable", i, obj)
		}

		val, err := assignable(value, elem.Type())
		if err != nil {
			return err
		}

		elem.Set(val)

		return nil

	case reflect.Struct:
		name, ok := selector.(string)
		if !ok {
			return ErrAccess.Wrapf("field name must be a string, found %T", selector)
		}

		field := rv.FieldByName(name)
		if !field.IsValid() {
			return ErrAccess.With(slog.String("field", name)).
				Wrapf("%T has no field %q", obj, name)
		}

		if !field.CanSet() {
			return ErrAccess.With(slog.String("field", name)).
				Wrapf("field %q of %T is not settable", name, obj)
		}

		val, err := assignable(value, field.Type())
		if err != nil {
			return err
		}

		field.Set(val)

		return nil
	}

	return ErrAccess.Wrapf("cannot assign member of %T", obj)
}

func mapKey(m reflect.Value, selector any) (reflect.Value, error) {
	key := reflect.ValueOf(selector)
	kt := m.Type().Key()

	switch {
	case key.Type().AssignableTo(kt):
		return key, nil
	case key.Type().ConvertibleTo(kt) && key.Kind() == kt.Kind():
		return key.Convert(kt), nil
	}

	return reflect.Value{}, ErrAccess.
		Wrapf("selector %v (%T) cannot index %s", selector, selector, m.Type())
}

func assignable(value any, to reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(value)

	switch {
	case v.Type().AssignableTo(to):
		return v, nil
	case isNumberKind(v.Kind()) && isNumberKind(to.Kind()):
		return v.Convert(to), nil
	}

	return reflect.Value{}, ErrAccess.Wrap(
		fmt.Errorf("cannot assign %s to %s", v.Type(), to))
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}

	return false
}
