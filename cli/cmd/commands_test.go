package cmd

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ardnew/scrip/lang"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Run
		stdin string
		want  string
	}{
		{
			name:  "exposed bindings",
			cmd:   Run{Format: "native"},
			stdin: "let a = 1; let b = a + 2; expose(b);",
			want:  "b = 3\n",
		},
		{
			name: "host variables",
			cmd: Run{
				Format:   "native",
				Bindings: Bindings{Var: []string{"x=4", "name=world"}},
			},
			stdin: `let y = x * 2; let g = "hello " + name; expose(y, g);`,
			want:  "g = \"hello world\"\nname = \"world\"\nx = 4\ny = 8\n",
		},
		{
			name:  "json",
			cmd:   Run{Format: "json"},
			stdin: `let a = 1.5; let s = "x"; expose(a, s);`,
			want:  "{\n  \"a\": 1.5,\n  \"s\": \"x\"\n}\n",
		},
		{
			name:  "yaml",
			cmd:   Run{Format: "yaml"},
			stdin: "let a = 2; expose(a);",
			want:  "a: 2\n",
		},
		{
			name:  "nothing exposed",
			cmd:   Run{Format: "native"},
			stdin: "let a = 2;",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, &tt.cmd, tt.stdin)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_SharedRootAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	first := writeFile(t, dir, "first.scrip", "let a = 1; expose(a);")
	second := writeFile(t, dir, "second.scrip", "let b = a + 1; expose(b);")

	got, err := execute(t, &Run{Format: "native", Files: []string{first, second}}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := "a = 1\nb = 2\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Run
		stdin string
		want  error
	}{
		{"syntax", Run{Format: "native"}, "let a = ;", lang.ErrSyntax},
		{"undefined", Run{Format: "native"}, "let a = b;", lang.ErrUndefined},
		{"unsupported", Run{Format: "native"}, "let a = true + 1;", lang.ErrUnsupportedOperation},
		{"bad binding", Run{Format: "native", Bindings: Bindings{Var: []string{"novalue"}}}, "", ErrBinding},
		{
			"loop limit",
			Run{Format: "native"},
			"let a = 0; while (true) { a += 1; }",
			lang.ErrLoopAborted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithOptions(t.Context(), lang.WithLoopCheck(lang.LoopLimit(10)))

			var out strings.Builder

			err := tt.cmd.Run(WithStreams(ctx, Streams{In: strings.NewReader(tt.stdin), Out: &out}))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Run = %v, want %v", err, tt.want)
			}

			var le *lang.Error
			if errors.As(err, &le) {
				if v, ok := le.Attr("file"); !ok || v.String() != StdinName {
					t.Errorf("file attribute = %v, %v", v, ok)
				}
			}
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		cmd  Eval
		want string
	}{
		{"joined arguments", Eval{Format: "native", Expr: []string{"1", "+", "2"}}, "3\n"},
		{"last statement", Eval{Format: "native", Expr: []string{"let a = 2; a * 21"}}, "42\n"},
		{"string", Eval{Format: "native", Expr: []string{`"ab" + 1`}}, "\"ab1\"\n"},
		{"json", Eval{Format: "json", Expr: []string{`"ab"`}}, "\"ab\"\n"},
		{"yaml", Eval{Format: "yaml", Expr: []string{"2.5"}}, "2.5\n"},
		{
			"host variable",
			Eval{Format: "native", Bindings: Bindings{Var: []string{"n=5"}}, Expr: []string{"n * n"}},
			"25\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, &tt.cmd, "")
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_Error(t *testing.T) {
	_, err := execute(t, &Eval{Format: "native", Expr: []string{"missing + 1"}}, "")
	if !errors.Is(err, lang.ErrUndefined) {
		t.Fatalf("Eval = %v, want ErrUndefined", err)
	}
}

func TestFmt(t *testing.T) {
	tests := []struct {
		name   string
		format string
		stdin  string
		want   string
	}{
		{
			name:   "native",
			format: "native",
			stdin:  "let   a=b*c ;\nif a { b = 1; }",
			want:   "let a = b * c;\nif (a){\n  b = 1;\n}\n",
		},
		{
			name:   "empty",
			format: "native",
			stdin:  ";;",
			want:   "",
		},
		{
			name:   "tokens",
			format: "tokens",
			stdin:  "let a = 1;",
			want: "1:1\tkeyword\t\"let\"\n" +
				"1:5\tidentifier\t\"a\"\n" +
				"1:7\tassign\t\"=\"\n" +
				"1:9\tnumber\t\"1\"\n" +
				"1:10\tstatement-end\t\";\"\n" +
				"1:11\tend-of-input\t\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, &Fmt{Format: tt.format}, tt.stdin)
			if err != nil {
				t.Fatalf("Fmt: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFmt_Dumps(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			got, err := execute(t, &Fmt{Format: format}, "let a = 1;")
			if err != nil {
				t.Fatalf("Fmt: %v", err)
			}

			for _, want := range []string{"scope", "declare", "assign", "constant"} {
				if !strings.Contains(got, want) {
					t.Errorf("%s dump lacks %q:\n%s", format, want, got)
				}
			}
		})
	}
}

func TestFmt_Errors(t *testing.T) {
	_, err := execute(t, &Fmt{Format: "native"}, "let a = 1")
	if !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("Fmt = %v, want ErrSyntax", err)
	}

	_, err = execute(t, &Fmt{Format: "tokens"}, `let a = "open`)
	if !errors.Is(err, lang.ErrLex) {
		t.Errorf("Fmt tokens = %v, want ErrLex", err)
	}

	_, err = execute(t, &Fmt{Format: "xml"}, "let a = 1;")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Fmt xml = %v, want ErrInvalidFormat", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.scrip", "let a = 1;")
	bad := writeFile(t, dir, "bad.scrip", "let a = 1;\nif (a { }")

	got, err := execute(t, &Check{Files: []string{good}}, "")
	if err != nil {
		t.Fatalf("Check(good): %v", err)
	}

	if want := good + ": ok\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	got, err = execute(t, &Check{Files: []string{good, bad}}, "")
	if !errors.Is(err, ErrCheck) {
		t.Fatalf("Check(bad) = %v, want ErrCheck", err)
	}

	if !strings.Contains(got, bad+": syntax error") || !strings.Contains(got, "  2 | if (a { }") {
		t.Errorf("diagnostic missing:\n%s", got)
	}

	var ce *Error
	if errors.As(err, &ce) {
		if v := ce.LogValue().Group(); len(v) == 0 || !hasAttr(v, "failed", 1) {
			t.Errorf("LogValue = %v", v)
		}
	}

	got, err = execute(t, &Check{Quiet: true, Files: []string{bad}}, "")
	if !errors.Is(err, ErrCheck) || got != "" {
		t.Errorf("quiet check = %q, %v", got, err)
	}
}

func hasAttr(attrs []slog.Attr, key string, n int64) bool {
	for _, a := range attrs {
		if a.Key == key && a.Value.Int64() == n {
			return true
		}
	}

	return false
}
