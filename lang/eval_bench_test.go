package lang

import (
	"strings"
	"testing"
)

func BenchmarkTokenize(b *testing.B) {
	src := strings.Repeat("let a1 = b * (c + 12.5) >>> 2;\n", 64)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Tokenize(src); err != nil {
			b.Fatalf("tokenize: %v", err)
		}
	}
}

// BenchmarkParse compares a cold parse against a cache hit.
func BenchmarkParse(b *testing.B) {
	src := strings.Repeat("if (a < 1) { b = a ? 1 : 2; } else { c = f(a, b); }\n", 32)

	b.Run("cold", func(b *testing.B) {
		b.ReportAllocs()

		for b.Loop() {
			if _, err := parseProgram(src); err != nil {
				b.Fatalf("parse: %v", err)
			}
		}
	})

	b.Run("cached", func(b *testing.B) {
		ClearCache()
		b.ReportAllocs()

		for b.Loop() {
			if _, err := Parse(src); err != nil {
				b.Fatalf("parse: %v", err)
			}
		}
	})
}

func BenchmarkEvaluate(b *testing.B) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "arithmetic",
			src:  "let a = 1;\nlet b = a * 3 + 4 - 2 / 1;\nexpose(a, b);",
		},
		{
			name: "string_concatenation",
			src:  "let s = \"a\" + 1 + true;\nexpose(s);",
		},
		{
			name: "while_loop",
			src:  "let i = 0;\nlet n = 0;\nwhile (i < 100) { n += i; i++; }\nexpose(i, n);",
		},
		{
			name: "builtin_call",
			src:  "let n = len(upper(\"hello\"));\nexpose(n);",
		},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			ast, err := Parse(tt.src)
			if err != nil {
				b.Fatalf("parse error: %v", err)
			}

			b.ReportAllocs()

			for b.Loop() {
				if _, err := ast.Evaluate(b.Context(), NewEnvironment().Child()); err != nil {
					b.Fatalf("eval error: %v", err)
				}
			}
		})
	}
}
