package lang

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Rank orders the runtime value types for promotion. An operator computes
// in a single working type derived from the ranks of its operands.
type Rank int

const (
	RankBit Rank = iota
	RankInt
	RankLong
	RankDecimal
	RankFloat
	RankDouble
	RankDateTime
	RankBoolean
	RankObject
	RankString
)

var rankName = [...]string{
	RankBit:      "BIT",
	RankInt:      "INT",
	RankLong:     "LONG",
	RankDecimal:  "DECIMAL",
	RankFloat:    "FLOAT",
	RankDouble:   "DOUBLE",
	RankDateTime: "DATETIME",
	RankBoolean:  "BOOLEAN",
	RankObject:   "OBJECT",
	RankString:   "STRING",
}

func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankName) {
		return "Rank(" + strconv.Itoa(int(r)) + ")"
	}

	return rankName[r]
}

// RankOf returns the rank of a runtime value.
func RankOf(v any) Rank {
	switch v.(type) {
	case int8:
		return RankBit
	case int32:
		return RankInt
	case int64, int:
		return RankLong
	case decimal.Decimal:
		return RankDecimal
	case float32:
		return RankFloat
	case float64:
		return RankDouble
	case time.Time:
		return RankDateTime
	case bool:
		return RankBoolean
	case string:
		return RankString
	}

	return RankObject
}

// workingRank returns the type an operator computes in. The first operand
// seeds it; a later operand of higher rank raises it, except that a rank
// beyond DOUBLE collapses the working type to STRING.
func workingRank(args []any) Rank {
	if len(args) == 0 {
		return RankObject
	}

	w := RankOf(args[0])

	for _, v := range args[1:] {
		r := RankOf(v)
		if r <= w {
			continue
		}

		if r > RankDouble {
			w = RankString
		} else {
			w = r
		}
	}

	return w
}

func conversionError(v any, to Rank) *Error {
	return ErrType.
		With(
			slog.String("from", RankOf(v).String()),
			slog.String("to", to.String()),
		).
		Wrapf("cannot convert %s to %s", RankOf(v), to)
}

func toBit(v any) (int8, error) {
	if b, ok := v.(int8); ok {
		return b, nil
	}

	return 0, conversionError(v, RankBit)
}

func toInt(v any) (int32, error) {
	switch v := v.(type) {
	case int8:
		return int32(v), nil
	case int32:
		return v, nil
	}

	return 0, conversionError(v, RankInt)
}

func toLong(v any) (int64, error) {
	switch v := v.(type) {
	case int8:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	}

	return 0, conversionError(v, RankLong)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	}

	return decimal.Zero, conversionError(v, RankDecimal)
}

func toFloat(v any) (float32, error) {
	switch v := v.(type) {
	case float32:
		return v, nil
	case decimal.Decimal:
		return float32(v.InexactFloat64()), nil
	}

	if l, err := toLong(v); err == nil {
		return float32(l), nil
	}

	return 0, conversionError(v, RankFloat)
}

func toDouble(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	}

	if l, err := toLong(v); err == nil {
		return float64(l), nil
	}

	return 0, conversionError(v, RankDouble)
}

func toDateTime(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}

	return time.Time{}, conversionError(v, RankDateTime)
}

func toBoolean(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	return false, conversionError(v, RankBoolean)
}

func toString(v any) (string, error) { return stringify(v), nil }

// toIndex converts an integer selector to int.
func toIndex(v any) (int, bool) {
	switch v := v.(type) {
	case int8:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case int:
		return v, true
	}

	return 0, false
}

// parseNumber converts a number literal to int32, int64 or float64,
// whichever parses first.
func parseNumber(text string) (any, error) {
	if i, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int32(i), nil
	}

	if l, err := strconv.ParseInt(text, 10, 64); err == nil {
		return l, nil
	}

	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}

	return nil, ErrLiteral.With(slog.String("literal", text)).
		Wrapf("%q is not a number", text)
}
