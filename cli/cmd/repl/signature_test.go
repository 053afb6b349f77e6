package repl

import (
	"slices"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantName  string
		wantIndex int
		wantIn    bool
	}{
		{"no call", "greeting", 8, "", 0, false},
		{"first argument", "max(", 4, "max", 0, true},
		{"typing first argument", "max(1", 5, "max", 0, true},
		{"second argument", "max(1,", 6, "max", 1, true},
		{"third argument", "pathjoin(a, b, c", 16, "pathjoin", 2, true},
		{"nested complete call", "max(abs(2), ", 12, "max", 1, true},
		{"cursor inside nested call", "max(abs(2, 3), 4)", 10, "abs", 1, true},
		{"closed call", "max(1, 2)", 9, "", 0, false},
		{"grouping parens", "x * (1 + ", 9, "", 0, false},
		{"comma in string", `join(list, ", `, 14, "join", 1, true},
		{"paren in string", `upper("(", `, 11, "upper", 1, true},
		{"after operator", "x + lower(", 10, "lower", 0, true},
		{"if condition", "if (x", 5, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantIn {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantIn)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
		wantOK     bool
	}{
		{"pathjoin", "pathjoin(...elem)", []string{"...elem"}, true},
		{"PathPrefix", "PathPrefix(list, ...prefix)", []string{"list", "...prefix"}, true},
		{"cwd", "cwd()", []string{}, true},
		{"split", "split(string, separator)", []string{"string", "separator"}, true},
		{"base", "", nil, false},
		{"nosuch", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params, ok := signature(s, tt.name)
			if sig != tt.wantSig || ok != tt.wantOK || !slices.Equal(params, tt.wantParams) {
				t.Errorf("signature(%q) = %q, %v, %v, want %q, %v, %v",
					tt.name, sig, params, ok, tt.wantSig, tt.wantParams, tt.wantOK)
			}
		})
	}

	// Every registered function has some signature.
	for _, name := range s.funcs.Names() {
		if _, _, ok := signature(s, name); !ok {
			t.Errorf("signature(%q) not found for a registered function", name)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		arg    int
		want   string
	}{
		{"cwd", []string{}, 0, "cwd()"},
		{"split", []string{"string", "separator"}, 1, "split(string, separator)"},
		{"pathjoin", []string{"...elem"}, 4, "pathjoin(...elem)"},
	}

	for _, tt := range tests {
		if got := renderSignatureHint(tt.name, tt.params, tt.arg); got != tt.want {
			t.Errorf("renderSignatureHint(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
