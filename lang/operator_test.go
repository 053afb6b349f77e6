package lang

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// chainOf feeds values and operator symbols to a fresh engine. Strings
// that name an operator are pushed as operators; anything else is an
// operand.
func chainOf(t *testing.T, items ...any) (any, error) {
	t.Helper()

	eng := newEngine()

	for _, it := range items {
		if s, ok := it.(string); ok {
			if _, known := catalog[s]; known {
				if err := eng.pushOperator(s, Position{}); err != nil {
					return nil, err
				}

				continue
			}
		}

		eng.pushValue(it)
	}

	return eng.finish()
}

func TestWorkingRank(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want Rank
	}{
		{"empty", nil, RankObject},
		{"single int", []any{int32(1)}, RankInt},
		{"int and long", []any{int32(1), int64(2)}, RankLong},
		{"long and int", []any{int64(1), int32(2)}, RankLong},
		{"int and decimal", []any{int32(1), decimal.NewFromInt(2)}, RankDecimal},
		{"float and double", []any{float32(1), float64(2)}, RankDouble},
		{"int and bool", []any{int32(1), true}, RankString},
		{"bool and int", []any{true, int32(1)}, RankBoolean},
		{"int and time", []any{int32(1), time.Time{}}, RankString},
		{"time and time", []any{time.Time{}, time.Time{}}, RankDateTime},
		{"double and object", []any{1.0, []int{}}, RankString},
		{"object alone", []any{struct{}{}}, RankObject},
		{"bool then string", []any{true, int32(1), "x"}, RankString},
		{"bit and bit", []any{int8(1), int8(2)}, RankBit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workingRank(tt.args); got != tt.want {
				t.Errorf("workingRank(%v) = %s, want %s", tt.args, got, tt.want)
			}
		})
	}
}

func TestOperators_Arithmetic(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name  string
		items []any
		want  any
	}{
		{"int overflow wraps", []any{int32(math.MaxInt32), "+", int32(1)}, int32(math.MinInt32)},
		{"long multiply", []any{int64(1) << 40, "*", int32(2)}, int64(1) << 41},
		{"decimal add is exact", []any{d("0.1"), "+", d("0.2")}, d("0.3")},
		{"decimal with int", []any{d("1.5"), "*", int32(2)}, d("3")},
		{"decimal divide", []any{d("1"), "/", d("4")}, d("0.25")},
		{"float stays float", []any{float32(1.5), "+", float32(2)}, float32(3.5)},
		{"float and int", []any{float32(0.5), "*", int32(4)}, float32(2)},
		{"double remainder", []any{7.5, "%", 2.0}, 1.5},
		{"double divide by zero", []any{1.0, "/", 0.0}, math.Inf(1)},
		{"long unsigned shift", []any{int64(-1), ">>>", int32(60)}, int64(15)},
		{"signed shift", []any{int32(-16), ">>", int32(2)}, int32(-4)},
		{"xor", []any{int32(6), "^", int32(3)}, int32(5)},
		{"unary plus string", []any{"+", "s"}, "s"},
		{"negate decimal", []any{"-", d("2.5")}, d("-2.5")},
		{"negate float", []any{"-", float32(2)}, float32(-2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chainOf(t, tt.items...)
			if err != nil {
				t.Fatalf("evaluate %v: %v", tt.items, err)
			}

			if want, ok := tt.want.(decimal.Decimal); ok {
				if g, ok := got.(decimal.Decimal); !ok || !g.Equal(want) {
					t.Errorf("got %v (%T), want %v", got, got, want)
				}

				return
			}

			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestOperators_Comparison(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	nan := math.NaN()

	tests := []struct {
		name  string
		items []any
		want  bool
	}{
		{"bit less", []any{int8(1), "<", int8(2)}, true},
		{"int greater equal", []any{int32(2), ">=", int32(2)}, true},
		{"long not equal", []any{int64(2), "!=", int32(2)}, false},
		{"decimal equal", []any{decimal.RequireFromString("1.50"), "==", decimal.RequireFromString("1.5")}, true},
		{"double less equal", []any{1.5, "<=", 1.25}, false},
		{"datetime before", []any{early, "<", late}, true},
		{"datetime equal", []any{late, "==", early.Add(time.Hour)}, true},
		{"bool greater", []any{true, ">", false}, true},
		{"string greater", []any{"b", ">", "a"}, true},
		{"nan not equal to itself", []any{nan, "==", nan}, false},
		{"nan unordered", []any{nan, "<", 1.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chainOf(t, tt.items...)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperators_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		items []any
	}{
		{"add bits", []any{int8(1), "+", int8(1)}},
		{"add datetimes", []any{time.Time{}, "+", time.Time{}}},
		{"subtract strings", []any{"a", "-", "b"}},
		{"multiply objects", []any{[]int{1}, "*", []int{2}}},
		{"and decimals", []any{decimal.NewFromInt(1), "&", decimal.NewFromInt(1)}},
		{"or booleans bitwise", []any{true, "|", false}},
		{"shift doubles", []any{1.0, "<<", int32(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chainOf(t, tt.items...)
			if !errors.Is(err, ErrUnsupportedOperation) {
				t.Fatalf("got %v, want ErrUnsupportedOperation", err)
			}
		})
	}
}

func TestEngine_PrefixResolution(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		prefix bool
		arity  int
		prec   int
	}{
		{"binary minus", "-", false, 2, precAdditive},
		{"unary minus", "-", true, 1, precUnary},
		{"postfix increment", "++", false, 1, precPostfix},
		{"prefix increment", "++", true, 1, precUnary},
		{"ternary", "?", false, 3, precTernary},
		{"colon", ":", true, 3, precTernary},
		{"compound", ">>>=", false, 2, precAssign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := lookupOperator(tt.symbol, tt.prefix)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}

			if def.arity != tt.arity || def.prec != tt.prec {
				t.Errorf("%s: arity %d prec %d, want %d and %d",
					tt.symbol, def.arity, def.prec, tt.arity, tt.prec)
			}
		})
	}

	if _, err := lookupOperator("$$", false); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("unknown operator: got %v, want ErrUnsupportedOperation", err)
	}
}

func TestEngine_Finish(t *testing.T) {
	got, err := chainOf(t)
	if err != nil || got != nil {
		t.Errorf("empty chain = %v, %v; want nil, nil", got, err)
	}

	got, err = chainOf(t, int32(1), int32(2))
	if err != nil || got != int32(2) {
		t.Errorf("operands only = %v, %v; want top of stack", got, err)
	}

	_, err = chainOf(t, int32(1), "*")
	if !errors.Is(err, ErrEvaluation) {
		t.Errorf("dangling operator: got %v, want ErrEvaluation", err)
	}
}

// The operand after a postfix operator is read in prefix position, so
// "a ++ + 1" applies unary plus to 1 and leaves it on top of the stack.
func TestEngine_PostfixThenPlus(t *testing.T) {
	env := NewEnvironment()
	_ = env.Declare("a", int32(5))

	got, err := chainOf(t, NamedReference(env, "a"), "++", "+", int32(1))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if got != int32(1) {
		t.Errorf("got %v, want 1", got)
	}

	if v, _ := env.Get("a"); v != int32(6) {
		t.Errorf("a = %v, want 6", v)
	}
}

func TestOperators_Catalog(t *testing.T) {
	for _, sym := range Operators() {
		forms := catalog[sym]
		if forms.prefix == nil || forms.infix == nil {
			t.Errorf("%s: missing form", sym)
		}
	}

	if n := len(Operators()); n != len(catalog) {
		t.Errorf("Operators() has %d symbols, catalog %d", n, len(catalog))
	}
}
