package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/scrip/lang"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"3", int32(3)},
		{"3000000000", int64(3000000000)},
		{"2.5", float64(2.5)},
		{"true", true},
		{`"quoted"`, "quoted"},
		{"hello", "hello"},
		{"1+2", "1+2"},
		{"", ""},
		{"upper(x)", "upper(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Literal(t.Context(), tt.text); got != tt.want {
				t.Errorf("Literal(%q) = %v (%T), want %v (%T)", tt.text, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestBindings_Environment(t *testing.T) {
	dir := t.TempDir()

	vars := writeFile(t, dir, "vars.yaml",
		"port: 8080\nname: api\nratio: 0.5\ntags: [a, b]\nlimits:\n  cpu: 2\n")

	b := Bindings{
		Vars: []string{vars},
		Var:  []string{"name=override", "debug=true"},
	}

	env, err := b.Environment(t.Context())
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}

	ranks := map[string]lang.Rank{
		"port":   lang.RankLong,
		"name":   lang.RankString,
		"ratio":  lang.RankDouble,
		"tags":   lang.RankObject,
		"limits": lang.RankObject,
		"debug":  lang.RankBoolean,
	}

	for name, want := range ranks {
		v, ok := env.Get(name)
		if !ok {
			t.Errorf("%s not bound", name)

			continue
		}

		if got := lang.RankOf(v); got != want {
			t.Errorf("%s = %v has rank %v, want %v", name, v, got, want)
		}
	}

	if v, _ := env.Get("name"); v != "override" {
		t.Errorf("name = %v, want override", v)
	}

	limits, _ := env.Get("limits")
	if m, ok := limits.(map[string]any); !ok || lang.RankOf(m["cpu"]) != lang.RankLong {
		t.Errorf("limits = %#v", limits)
	}
}

func TestBindings_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		b    Bindings
	}{
		{"missing separator", Bindings{Var: []string{"name"}}},
		{"empty name", Bindings{Var: []string{"=1"}}},
		{"unreadable file", Bindings{Vars: []string{dir + "/missing.yaml"}}},
		{"not a mapping", Bindings{Vars: []string{writeFile(t, dir, "list.yaml", "- a\n- b\n")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Environment(t.Context()); !errors.Is(err, ErrBinding) {
				t.Errorf("Environment = %v, want ErrBinding", err)
			}
		})
	}
}
