package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestError_IsThroughDerivation(t *testing.T) {
	derived := ErrType.
		With(slog.String("k", "v")).
		WithPosition(Position{Line: 2, Column: 3}).
		Wrapf("bad %s", "thing")

	if !errors.Is(derived, ErrType) {
		t.Errorf("derived error does not match its sentinel")
	}

	if errors.Is(derived, ErrSyntax) {
		t.Errorf("derived error matches an unrelated sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", derived)
	if !errors.Is(wrapped, ErrType) {
		t.Errorf("fmt-wrapped error lost its sentinel")
	}

	if e := WrapError(wrapped); e != derived {
		t.Errorf("WrapError did not find the inner *Error")
	}

	plain := WrapError(io.EOF)
	if !errors.Is(plain, io.EOF) || errors.Is(plain, ErrType) {
		t.Errorf("WrapError of a plain error should only match the plain error")
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"sentinel", ErrSyntax, "syntax error"},
		{"wrapped", ErrSyntax.Wrapf("oops"), "syntax error: oops"},
		{
			"positioned",
			ErrSyntax.WithPosition(Position{Line: 3, Column: 7}).Wrapf("oops"),
			"syntax error (line 3, column 7): oops",
		},
		{"cause only", WrapError(io.EOF), "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_AttrsAreNotShared(t *testing.T) {
	base := ErrAccess.With(slog.String("a", "1"))
	left := base.With(slog.String("b", "2"))
	right := base.With(slog.String("c", "3"))

	if _, ok := left.Attr("c"); ok {
		t.Errorf("attribute leaked between siblings")
	}

	if v, ok := right.Attr("a"); !ok || v.String() != "1" {
		t.Errorf("inherited attribute = %v, %v", v, ok)
	}

	if _, ok := ErrAccess.Attr("a"); ok {
		t.Errorf("sentinel was modified")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrEvaluation.
		WithPosition(Position{Line: 4, Column: 2}).
		With(slog.String("operator", "*")).
		Wrapf("boom")

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":    "evaluation error",
		"cause":    "boom",
		"line":     "4",
		"column":   "2",
		"operator": "*",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("LogValue[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestError_Snippet(t *testing.T) {
	src := "let a = 1;\nlet b = a * true;"

	err := ErrUnsupportedOperation.WithPosition(Position{Line: 2, Column: 11})

	want := "  2 | let b = a * true;\n" +
		"                ^\n"
	if got := err.Snippet(src); got != want {
		t.Errorf("Snippet =\n%q\nwant\n%q", got, want)
	}

	if got := ErrSyntax.Snippet(src); got != "" {
		t.Errorf("Snippet without position = %q, want empty", got)
	}

	far := ErrSyntax.WithPosition(Position{Line: 9, Column: 1})
	if got := far.Snippet(src); got != "" {
		t.Errorf("Snippet past end = %q, want empty", got)
	}
}
