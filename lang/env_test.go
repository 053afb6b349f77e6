package lang

import (
	"errors"
	"maps"
	"slices"
	"testing"
)

func TestEnvironment_DeclareAndLookup(t *testing.T) {
	root := NewEnvironment()
	if err := root.Declare("a", int32(1)); err != nil {
		t.Fatalf("declare a: %v", err)
	}

	child := root.Child()

	if v, ok := child.Get("a"); !ok || v != int32(1) {
		t.Errorf("child.Get(a) = %v, %v; want 1, true", v, ok)
	}

	if !child.Exists("a") || child.Has("a") {
		t.Errorf("a should exist through the chain but not in the child scope")
	}

	if err := child.Declare("a", int32(2)); !errors.Is(err, ErrDeclared) {
		t.Errorf("shadowing declare = %v, want ErrDeclared", err)
	}

	if _, err := child.Lookup("missing"); !errors.Is(err, ErrUndefined) {
		t.Errorf("lookup missing = %v, want ErrUndefined", err)
	}

	if child.Parent() != root || root.Parent() != nil {
		t.Errorf("parent links are wrong")
	}
}

func TestEnvironment_DeclareWithoutValue(t *testing.T) {
	env := NewEnvironment()
	if err := env.Declare("a", nil); err != nil {
		t.Fatalf("declare: %v", err)
	}

	if _, err := env.Lookup("a"); !errors.Is(err, ErrUnset) {
		t.Errorf("lookup unset = %v, want ErrUnset", err)
	}

	if _, ok := env.Get("a"); ok {
		t.Errorf("Get reported a value for an unset name")
	}

	if got := env.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot = %v, want empty", got)
	}

	if err := env.Set("a", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if v, _ := env.Get("a"); v != "x" {
		t.Errorf("a = %v, want x", v)
	}
}

func TestEnvironment_SetUpdatesOwner(t *testing.T) {
	root := NewEnvironment()
	_ = root.Declare("a", int32(1))

	child := root.Child()
	if err := child.Set("a", int32(5)); err != nil {
		t.Fatalf("set: %v", err)
	}

	if v, _ := root.Get("a"); v != int32(5) {
		t.Errorf("root a = %v, want 5", v)
	}

	if child.Has("a") {
		t.Errorf("Set created a binding in the child scope")
	}

	if err := child.Set("b", int32(1)); !errors.Is(err, ErrUndefined) {
		t.Errorf("set undeclared = %v, want ErrUndefined", err)
	}

	if err := child.Set("a", nil); !errors.Is(err, ErrAbsentValue) {
		t.Errorf("set nil = %v, want ErrAbsentValue", err)
	}
}

func TestEnvironment_Expose(t *testing.T) {
	root := NewEnvironment()
	_ = root.Declare("taken", int32(0))

	child := root.Child()
	_ = child.Declare("a", int32(1))

	if err := child.Expose("a"); err != nil {
		t.Fatalf("expose: %v", err)
	}

	if !root.Has("a") || child.Has("a") {
		t.Errorf("a was not moved into the parent")
	}

	tests := []struct {
		name string
		env  *Environment
		expo string
	}{
		{"not in current scope", child, "a"},
		{"outermost scope", root, "taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.env.Expose(tt.expo); !errors.Is(err, ErrExpose) {
				t.Errorf("Expose(%s) = %v, want ErrExpose", tt.expo, err)
			}
		})
	}

	// A name can only reach the parent if the parent does not bind it.
	// Declare refuses that case, so build it from a detached scope.
	clash := &Environment{parent: root, vars: map[string]any{"taken": int32(1)}}
	if err := clash.Expose("taken"); !errors.Is(err, ErrExpose) {
		t.Errorf("expose over parent binding = %v, want ErrExpose", err)
	}
}

func TestEnvironment_Listing(t *testing.T) {
	root := NewEnvironment()
	_ = root.Declare("z", int32(1))

	child := root.Child()
	_ = child.Declare("b", "x")
	_ = child.Declare("a", true)
	_ = child.Declare("u", nil)

	if got, want := child.Names(), []string{"a", "b", "u"}; !slices.Equal(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}

	if got, want := child.Visible(), []string{"a", "b", "u", "z"}; !slices.Equal(got, want) {
		t.Errorf("Visible = %v, want %v", got, want)
	}

	var order []string
	for name := range child.All() {
		order = append(order, name)
	}

	if want := []string{"a", "b"}; !slices.Equal(order, want) {
		t.Errorf("All order = %v, want %v", order, want)
	}

	want := map[string]any{"a": true, "b": "x"}
	if got := child.Snapshot(); !maps.Equal(got, want) {
		t.Errorf("Snapshot = %v, want %v", got, want)
	}
}
