package lang

import (
	"errors"
	"testing"
)

type hostPoint struct {
	X, Y   int
	Label  string
	hidden int
}

func TestHostAccess_Get(t *testing.T) {
	pt := &hostPoint{X: 1, Y: 2, Label: "p"}

	tests := []struct {
		name string
		obj  any
		sel  any
		want any
	}{
		{"map string key", map[string]any{"a": int32(1)}, "a", int32(1)},
		{"map int key", map[int]string{3: "c"}, 3, "c"},
		{"slice element", []any{"x", "y"}, 1, "y"},
		{"array element", [2]int{7, 8}, 0, 7},
		{"struct field", hostPoint{X: 4}, "X", 4},
		{"pointer to struct", pt, "Label", "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HostAccess{}.Get(tt.obj, tt.sel)
			if err != nil {
				t.Fatalf("Get(%v, %v): %v", tt.obj, tt.sel, err)
			}

			if got != tt.want {
				t.Errorf("Get(%v, %v) = %v (%T), want %v (%T)",
					tt.obj, tt.sel, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestHostAccess_GetErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  any
		sel  any
	}{
		{"absent", nil, "a"},
		{"missing map key", map[string]int{}, "a"},
		{"wrong map key type", map[string]int{"a": 1}, 1},
		{"index out of range", []int{1}, 5},
		{"negative index", []int{1, 2}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (HostAccess{}).Get(tt.obj, tt.sel); !errors.Is(err, ErrAccess) {
				t.Errorf("Get = %v, want ErrAccess", err)
			}
		})
	}
}

func TestHostAccess_Set(t *testing.T) {
	m := map[string]any{}
	if err := (HostAccess{}).Set(m, "k", "v"); err != nil {
		t.Fatalf("map set: %v", err)
	}

	if m["k"] != "v" {
		t.Errorf("m[k] = %v, want v", m["k"])
	}

	s := []int{0, 0}
	if err := (HostAccess{}).Set(s, 1, int32(9)); err != nil {
		t.Fatalf("slice set: %v", err)
	}

	if s[1] != 9 {
		t.Errorf("s[1] = %d, want 9 (converted from INT)", s[1])
	}

	pt := &hostPoint{}
	if err := (HostAccess{}).Set(pt, "Y", int64(3)); err != nil {
		t.Fatalf("struct set: %v", err)
	}

	if pt.Y != 3 {
		t.Errorf("pt.Y = %d, want 3", pt.Y)
	}
}

func TestHostAccess_SetErrors(t *testing.T) {
	tests := []struct {
		name  string
		obj   any
		sel   any
		value any
	}{
		{"absent", nil, "a", int32(1)},
		{"nil pointer", (*hostPoint)(nil), "X", int32(1)},
		{"struct by value", hostPoint{}, "X", int32(1)},
		{"unexported field", &hostPoint{}, "hidden", int32(1)},
		{"unknown field", &hostPoint{}, "Z", int32(1)},
		{"field type mismatch", &hostPoint{}, "Label", int32(1)},
		{"index out of range", []int{1}, 3, int32(1)},
		{"string index on slice", []int{1}, "a", int32(1)},
		{"scalar", 5, 0, int32(1)},
		{"nil map", map[string]any(nil), "k", int32(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := (HostAccess{}).Set(tt.obj, tt.sel, tt.value); !errors.Is(err, ErrAccess) {
				t.Errorf("Set = %v, want ErrAccess", err)
			}
		})
	}
}
