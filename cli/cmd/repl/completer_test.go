package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"member", "cfg.port", 8, "port", 4, 8},
		{"after_operator", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "upper(fo", 8, "fo", 6, 8},
		{"after_comma", "max(a, fo", 9, "fo", 7, 9},
		{"underscore", "max_iter", 4, "max_iter", 0, 8},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"empty_after_dot", "cfg.", 4, "", 4, 4},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
		{"control", ":he", 3, "he", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"after_dot", "cfg.", 4, "cfg"},
		{"chain", "cfg.server.po", 11, "cfg.server"},
		{"after_operator", "x + cfg.server.", 15, "cfg.server"},
		{"after_paren", "(cfg.", 5, "cfg"},
		{"no_chain", "a + ", 4, ""},
		{"leading_dot", "x + .a.", 7, ""},
		{"double_dot", "a..", 3, ""},
		{"inner_double_dot", "a..b.", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestInString(t *testing.T) {
	tests := []struct {
		input  string
		offset int
		want   bool
	}{
		{`"abc`, 2, true},
		{`"abc" + x`, 8, false},
		{`upper("a`, 8, true},
		{`x`, 5, false},
	}

	for _, tt := range tests {
		if got := inString(tt.input, tt.offset); got != tt.want {
			t.Errorf("inString(%q, %d) = %v, want %v", tt.input, tt.offset, got, tt.want)
		}
	}
}

func matchNames(c completion) []string {
	names := make([]string, len(c.matches))
	for i, m := range c.matches {
		names[i] = m.Str
	}

	return names
}

func TestComplete(t *testing.T) {
	s := newTestSession(t)
	s.env.Declare("cfg", map[string]any{"port": int64(80), "host": "h"}) //nolint:errcheck
	s.env.Declare("counter", int32(0))                                   //nolint:errcheck

	tests := []struct {
		name    string
		input   string
		contain []string
		exact   []string
	}{
		{name: "empty", input: "", exact: []string{}},
		{name: "variable", input: "count", contain: []string{"counter"}},
		{name: "keyword", input: "whil", contain: []string{"while"}},
		{name: "function", input: "x + uppe", contain: []string{"upper"}},
		{name: "members", input: "cfg.", exact: []string{"host", "port"}},
		{name: "member prefix", input: "cfg.po", exact: []string{"port"}},
		{name: "unknown parent", input: "nope.", exact: []string{}},
		{name: "in string", input: `"coun`, exact: []string{}},
		{name: "control", input: ":re", exact: []string{"reset"}},
		{name: "control bare", input: ":", exact: []string{}},
		{name: "control argument", input: ":help va", exact: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchNames(complete(s, tt.input, len(tt.input)))

			if tt.exact != nil && !slices.Equal(got, tt.exact) {
				t.Errorf("complete(%q) = %v, want %v", tt.input, got, tt.exact)
			}

			for _, want := range tt.contain {
				if !slices.Contains(got, want) {
					t.Errorf("complete(%q) = %v, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	s := newTestSession(t)
	matches := fuzzy.Matches{{Str: "alpha"}, {Str: "beta"}}

	tests := []struct {
		width int
		want  string
	}{
		{0, ""},
		{80, "alpha  beta"},
		{11, "alpha  beta"},
		{8, "alpha  ..."},
	}

	for _, tt := range tests {
		if got := renderCandidateBar(s, matches, -1, false, tt.width); got != tt.want {
			t.Errorf("renderCandidateBar(width %d) = %q, want %q", tt.width, got, tt.want)
		}
	}

	got := renderCandidateBar(s, fuzzy.Matches{{Str: "upper"}}, 0, true, 80)
	if got != "upper()" {
		t.Errorf("renderCandidateBar(function) = %q, want %q", got, "upper()")
	}
}
