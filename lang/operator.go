package lang

import (
	"cmp"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Operator precedence levels. Lower values bind tighter.
const (
	precPostfix    = 1
	precUnary      = 2
	precAdditive   = 3
	precShift      = 4
	precRelational = 5
	precEquality   = 6
	precBitAnd     = 7
	precBitXor     = 8
	precBitOr      = 9
	precLogical    = 10
	precTernary    = 12
	precAssign     = 13
)

// operatorDef is one entry of the operator catalog.
type operatorDef struct {
	apply  func(args []any) (any, error)
	symbol string
	arity  int
	prec   int
}

// operatorForms holds the prefix-position and operand-position forms of a
// symbol. Symbols with a single meaning use the same definition for both.
type operatorForms struct {
	prefix *operatorDef
	infix  *operatorDef
}

// catalog maps each operator symbol to its definitions.
var catalog = buildCatalog()

// lookupOperator returns the definition of symbol for the given position:
// prefix is true when no token, or an operator, precedes the symbol.
func lookupOperator(symbol string, prefix bool) (*operatorDef, error) {
	forms, ok := catalog[symbol]
	if !ok {
		return nil, ErrUnsupportedOperation.
			With(slog.String("operator", symbol)).
			Wrapf("unknown operator %q", symbol)
	}

	if prefix {
		return forms.prefix, nil
	}

	return forms.infix, nil
}

// Operators returns every operator symbol the language accepts.
func Operators() []string {
	syms := make([]string, 0, len(catalog))
	for sym := range catalog {
		syms = append(syms, sym)
	}

	return syms
}

func unsupported(symbol string, w Rank) *Error {
	return ErrUnsupportedOperation.
		With(slog.String("operator", symbol), slog.String("type", w.String())).
		Wrapf("operator %q does not support %s", symbol, w)
}

// binaryKernel holds the computation of a two-operand operator for each
// working type it supports. A nil entry rejects that working type.
type binaryKernel struct {
	bit     func(a, b int8) (any, error)
	int     func(a, b int32) (any, error)
	long    func(a, b int64) (any, error)
	dec     func(a, b decimal.Decimal) (any, error)
	float   func(a, b float32) (any, error)
	double  func(a, b float64) (any, error)
	time    func(a, b time.Time) (any, error)
	boolean func(a, b bool) (any, error)
	str     func(a, b string) (any, error)
}

func apply2[T any](
	fn func(a, b T) (any, error),
	conv func(any) (T, error),
	a, b any,
) (any, error) {
	x, err := conv(a)
	if err != nil {
		return nil, err
	}

	y, err := conv(b)
	if err != nil {
		return nil, err
	}

	return fn(x, y)
}

func (k binaryKernel) compute(symbol string, a, b any) (any, error) {
	w := workingRank([]any{a, b})

	switch {
	case w == RankBit && k.bit != nil:
		return apply2(k.bit, toBit, a, b)
	case w == RankInt && k.int != nil:
		return apply2(k.int, toInt, a, b)
	case w == RankLong && k.long != nil:
		return apply2(k.long, toLong, a, b)
	case w == RankDecimal && k.dec != nil:
		return apply2(k.dec, toDecimal, a, b)
	case w == RankFloat && k.float != nil:
		return apply2(k.float, toFloat, a, b)
	case w == RankDouble && k.double != nil:
		return apply2(k.double, toDouble, a, b)
	case w == RankDateTime && k.time != nil:
		return apply2(k.time, toDateTime, a, b)
	case w == RankBoolean && k.boolean != nil:
		return apply2(k.boolean, toBoolean, a, b)
	case w == RankString && k.str != nil:
		return apply2(k.str, toString, a, b)
	}

	return nil, unsupported(symbol, w)
}

// unaryKernel is the single-operand counterpart of binaryKernel.
type unaryKernel struct {
	int     func(a int32) (any, error)
	long    func(a int64) (any, error)
	dec     func(a decimal.Decimal) (any, error)
	float   func(a float32) (any, error)
	double  func(a float64) (any, error)
	boolean func(a bool) (any, error)
	str     func(a string) (any, error)
}

func apply1[T any](fn func(a T) (any, error), conv func(any) (T, error), a any) (any, error) {
	x, err := conv(a)
	if err != nil {
		return nil, err
	}

	return fn(x)
}

func (k unaryKernel) compute(symbol string, a any) (any, error) {
	w := RankOf(a)

	switch {
	case w == RankInt && k.int != nil:
		return apply1(k.int, toInt, a)
	case w == RankLong && k.long != nil:
		return apply1(k.long, toLong, a)
	case w == RankDecimal && k.dec != nil:
		return apply1(k.dec, toDecimal, a)
	case w == RankFloat && k.float != nil:
		return apply1(k.float, toFloat, a)
	case w == RankDouble && k.double != nil:
		return apply1(k.double, toDouble, a)
	case w == RankBoolean && k.boolean != nil:
		return apply1(k.boolean, toBoolean, a)
	case w == RankString && k.str != nil:
		return apply1(k.str, toString, a)
	}

	return nil, unsupported(symbol, w)
}

type integer interface{ ~int8 | ~int32 | ~int64 }

type number interface {
	integer | ~float32 | ~float64
}

func add[T number | ~string](a, b T) (any, error) { return a + b, nil }

func sub[T number](a, b T) (any, error) { return a - b, nil }

func mul[T number](a, b T) (any, error) { return a * b, nil }

func fdiv[T ~float32 | ~float64](a, b T) (any, error) { return a / b, nil }

func fmod[T ~float32 | ~float64](a, b T) (any, error) {
	return T(math.Mod(float64(a), float64(b))), nil
}

var errDivideByZero = ErrEvaluation.Wrapf("division by zero")

func div[T integer](a, b T) (any, error) {
	if b == 0 {
		return nil, errDivideByZero
	}

	return a / b, nil
}

func mod[T integer](a, b T) (any, error) {
	if b == 0 {
		return nil, errDivideByZero
	}

	return a % b, nil
}

func and[T integer](a, b T) (any, error) { return a & b, nil }
func or[T integer](a, b T) (any, error)  { return a | b, nil }
func xor[T integer](a, b T) (any, error) { return a ^ b, nil }

func neg[T number](a T) (any, error) { return -a, nil }

func identity[T any](a T) (any, error) { return a, nil }

// relation is a comparison outcome test over a three-way compare result.
type relation func(c int) bool

var (
	relLess         relation = func(c int) bool { return c < 0 }
	relGreater      relation = func(c int) bool { return c > 0 }
	relLessEqual    relation = func(c int) bool { return c <= 0 }
	relGreaterEqual relation = func(c int) bool { return c >= 0 }
	relEqual        relation = func(c int) bool { return c == 0 }
	relNotEqual     relation = func(c int) bool { return c != 0 }
)

func ordered[T cmp.Ordered](rel relation) func(a, b T) (any, error) {
	return func(a, b T) (any, error) { return rel(cmp.Compare(a, b)), nil }
}

// floating compares IEEE values so that NaN is unordered.
func floating[T ~float32 | ~float64](rel relation) func(a, b T) (any, error) {
	return func(a, b T) (any, error) {
		if a != a || b != b { //nolint:gocritic // NaN check
			return false, nil
		}

		return rel(cmp.Compare(a, b)), nil
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}

	return -1
}

func comparison(rel relation) binaryKernel {
	return binaryKernel{
		bit:    ordered[int8](rel),
		int:    ordered[int32](rel),
		long:   ordered[int64](rel),
		float:  floating[float32](rel),
		double: floating[float64](rel),
		str:    ordered[string](rel),
		dec: func(a, b decimal.Decimal) (any, error) {
			return rel(a.Cmp(b)), nil
		},
		time: func(a, b time.Time) (any, error) {
			return rel(a.Compare(b)), nil
		},
		boolean: func(a, b bool) (any, error) {
			return rel(compareBool(a, b)), nil
		},
	}
}

func shift(int32Fn func(a int32, n uint) int32, int64Fn func(a int64, n uint) int64) binaryKernel {
	return binaryKernel{
		int: func(a, b int32) (any, error) { return int32Fn(a, uint(b)&31), nil },
		long: func(a, b int64) (any, error) {
			return int64Fn(a, uint(b)&63), nil
		},
	}
}

var (
	kernelAdd = binaryKernel{
		int: add[int32], long: add[int64], float: add[float32], double: add[float64],
		str: add[string],
		dec: func(a, b decimal.Decimal) (any, error) { return a.Add(b), nil },
	}
	kernelSub = binaryKernel{
		int: sub[int32], long: sub[int64], float: sub[float32], double: sub[float64],
		dec: func(a, b decimal.Decimal) (any, error) { return a.Sub(b), nil },
	}
	kernelMul = binaryKernel{
		int: mul[int32], long: mul[int64], float: mul[float32], double: mul[float64],
		dec: func(a, b decimal.Decimal) (any, error) { return a.Mul(b), nil },
	}
	kernelDiv = binaryKernel{
		int: div[int32], long: div[int64], float: fdiv[float32], double: fdiv[float64],
		dec: func(a, b decimal.Decimal) (any, error) {
			if b.IsZero() {
				return nil, errDivideByZero
			}

			return a.Div(b), nil
		},
	}
	kernelMod = binaryKernel{
		int: mod[int32], long: mod[int64], float: fmod[float32], double: fmod[float64],
		dec: func(a, b decimal.Decimal) (any, error) {
			if b.IsZero() {
				return nil, errDivideByZero
			}

			return a.Mod(b), nil
		},
	}
	kernelShl = shift(
		func(a int32, n uint) int32 { return a << n },
		func(a int64, n uint) int64 { return a << n },
	)
	kernelShr = shift(
		func(a int32, n uint) int32 { return a >> n },
		func(a int64, n uint) int64 { return a >> n },
	)
	kernelUshr = shift(
		func(a int32, n uint) int32 { return int32(uint32(a) >> n) },
		func(a int64, n uint) int64 { return int64(uint64(a) >> n) },
	)
	kernelAnd    = binaryKernel{int: and[int32], long: and[int64]}
	kernelOr     = binaryKernel{int: or[int32], long: or[int64]}
	kernelXor    = binaryKernel{int: xor[int32], long: xor[int64]}
	kernelLogAnd = binaryKernel{
		boolean: func(a, b bool) (any, error) { return a && b, nil },
	}
	kernelLogOr = binaryKernel{
		boolean: func(a, b bool) (any, error) { return a || b, nil },
	}

	kernelNeg = unaryKernel{
		int: neg[int32], long: neg[int64], float: neg[float32], double: neg[float64],
		dec: func(a decimal.Decimal) (any, error) { return a.Neg(), nil },
	}
	kernelPlus = unaryKernel{
		int: identity[int32], long: identity[int64], float: identity[float32],
		double: identity[float64], dec: identity[decimal.Decimal],
		str: identity[string],
	}
	kernelNot = unaryKernel{
		boolean: func(a bool) (any, error) { return !a, nil },
	}
)

func binary(symbol string, prec int, k binaryKernel) *operatorDef {
	return &operatorDef{
		symbol: symbol, arity: 2, prec: prec,
		apply: func(args []any) (any, error) {
			vals, err := derefAll(args)
			if err != nil {
				return nil, err
			}

			return k.compute(symbol, vals[0], vals[1])
		},
	}
}

func unary(symbol string, k unaryKernel) *operatorDef {
	return &operatorDef{
		symbol: symbol, arity: 1, prec: precUnary,
		apply: func(args []any) (any, error) {
			v, err := deref(args[0])
			if err != nil {
				return nil, err
			}

			return k.compute(symbol, v)
		},
	}
}

func assignTarget(symbol string, v any) (*Reference, error) {
	ref, ok := v.(*Reference)
	if !ok {
		return nil, ErrType.With(slog.String("operator", symbol)).
			Wrapf("operator %q requires an assignable operand, found %s",
				symbol, RankOf(v))
	}

	return ref, nil
}

// step increments or decrements the referenced value. The prefix form
// yields the updated value, the postfix form the original one.
func step(symbol string, prec int, k binaryKernel, postfix bool) *operatorDef {
	return &operatorDef{
		symbol: symbol, arity: 1, prec: prec,
		apply: func(args []any) (any, error) {
			ref, err := assignTarget(symbol, args[0])
			if err != nil {
				return nil, err
			}

			old, err := ref.Read()
			if err != nil {
				return nil, err
			}

			one, err := unitOf(symbol, old)
			if err != nil {
				return nil, err
			}

			updated, err := k.compute(symbol, old, one)
			if err != nil {
				return nil, err
			}

			if err := ref.Assign(updated); err != nil {
				return nil, err
			}

			if postfix {
				return old, nil
			}

			return updated, nil
		},
	}
}

// unitOf returns the value one in the type of v.
func unitOf(symbol string, v any) (any, error) {
	switch RankOf(v) {
	case RankInt:
		return int32(1), nil
	case RankLong:
		return int64(1), nil
	case RankDecimal:
		return decimal.NewFromInt(1), nil
	case RankFloat:
		return float32(1), nil
	case RankDouble:
		return float64(1), nil
	}

	return nil, unsupported(symbol, RankOf(v))
}

// assign stores the right operand into the left; a compound form first
// combines both with its binary kernel.
func assign(symbol string, k *binaryKernel) *operatorDef {
	return &operatorDef{
		symbol: symbol, arity: 2, prec: precAssign,
		apply: func(args []any) (any, error) {
			ref, err := assignTarget(symbol, args[0])
			if err != nil {
				return nil, err
			}

			value, err := deref(args[1])
			if err != nil {
				return nil, err
			}

			if k != nil {
				cur, err := ref.Read()
				if err != nil {
					return nil, err
				}

				value, err = k.compute(symbol, cur, value)
				if err != nil {
					return nil, err
				}
			}

			if err := ref.Assign(value); err != nil {
				return nil, err
			}

			return value, nil
		},
	}
}

// ternary selects the second or third operand by the first. The working
// type over all three operands must be BOOLEAN.
func ternary(symbol string) *operatorDef {
	return &operatorDef{
		symbol: symbol, arity: 3, prec: precTernary,
		apply: func(args []any) (any, error) {
			vals, err := derefAll(args)
			if err != nil {
				return nil, err
			}

			if w := workingRank(vals); w != RankBoolean {
				return nil, unsupported(symbol, w)
			}

			cond, err := toBoolean(vals[0])
			if err != nil {
				return nil, err
			}

			if cond {
				return vals[1], nil
			}

			return vals[2], nil
		},
	}
}

func single(def *operatorDef) operatorForms {
	return operatorForms{prefix: def, infix: def}
}

func buildCatalog() map[string]operatorForms {
	cat := map[string]operatorForms{
		"+": {prefix: unary("+", kernelPlus), infix: binary("+", precAdditive, kernelAdd)},
		"-": {prefix: unary("-", kernelNeg), infix: binary("-", precAdditive, kernelSub)},
		"++": {
			prefix: step("++", precUnary, kernelAdd, false),
			infix:  step("++", precPostfix, kernelAdd, true),
		},
		"--": {
			prefix: step("--", precUnary, kernelSub, false),
			infix:  step("--", precPostfix, kernelSub, true),
		},
		"!":   single(unary("!", kernelNot)),
		"*":   single(binary("*", precUnary, kernelMul)),
		"/":   single(binary("/", precUnary, kernelDiv)),
		"%":   single(binary("%", precUnary, kernelMod)),
		"<<":  single(binary("<<", precShift, kernelShl)),
		">>":  single(binary(">>", precShift, kernelShr)),
		">>>": single(binary(">>>", precShift, kernelUshr)),
		"<":   single(binary("<", precRelational, comparison(relLess))),
		">":   single(binary(">", precRelational, comparison(relGreater))),
		"<=":  single(binary("<=", precRelational, comparison(relLessEqual))),
		">=":  single(binary(">=", precRelational, comparison(relGreaterEqual))),
		"==":  single(binary("==", precEquality, comparison(relEqual))),
		"!=":  single(binary("!=", precEquality, comparison(relNotEqual))),
		"&":   single(binary("&", precBitAnd, kernelAnd)),
		"^":   single(binary("^", precBitXor, kernelXor)),
		"|":   single(binary("|", precBitOr, kernelOr)),
		"&&":  single(binary("&&", precLogical, kernelLogAnd)),
		"||":  single(binary("||", precLogical, kernelLogOr)),
		"?":   single(ternary("?")),
		":":   single(ternary(":")),
		"=":   single(assign("=", nil)),
	}

	for sym, k := range map[string]binaryKernel{
		"+=": kernelAdd, "-=": kernelSub, "*=": kernelMul, "/=": kernelDiv,
		"%=": kernelMod, "&=": kernelAnd, "|=": kernelOr,
		"<<=": kernelShl, ">>=": kernelShr, ">>>=": kernelUshr,
	} {
		cat[sym] = single(assign(sym, &k))
	}

	return cat
}
