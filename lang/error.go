package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors derived from a sentinel with [Error.Wrap], [Error.Wrapf],
// [Error.With] or [Error.WithPosition] still match it with [errors.Is].
var (
	ErrLex                  = NewError("lex error")
	ErrSyntax               = NewError("syntax error")
	ErrType                 = NewError("type error")
	ErrUnsupportedOperation = NewError("unsupported operation")
	ErrAccess               = NewError("access error")
	ErrFunctionNotFound     = NewError("function not found")
	ErrEvaluation           = NewError("evaluation error")
	ErrLiteral              = NewError("invalid literal")
	ErrDeclared             = NewError("variable already declared")
	ErrUndefined            = NewError("undefined variable")
	ErrUnset                = NewError("variable has no value")
	ErrAbsentValue          = NewError("cannot assign absent value")
	ErrExpose               = NewError("cannot expose variable")
	ErrReadInput            = NewError("failed to read input")
	ErrLoopAborted          = NewError("loop aborted")
)

// Error represents an error with optional structured logging attributes and
// source position. It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position
	kind  *Error // Sentinel this error was derived from
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> (line L, column C): <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.pos != nil {
			msg += " (" + e.pos.String() + ")"
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.kind == nil {
		return false
	}

	return e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// Wrapf creates a new Error wrapping a formatted error.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = &pos

	return c
}

func (e *Error) clone() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs, // Share attrs
		pos:   e.pos,
		kind:  e.kind,
	}
}

// Snippet renders the source line holding the error position with a caret
// under the offending column. It returns the empty string when the error has
// no position or the position is outside source.
func (e *Error) Snippet(source string) string {
	if e.pos == nil || e.pos.Line < 1 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	var sb strings.Builder

	num := strconv.Itoa(e.pos.Line)

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(strings.TrimRight(lines[e.pos.Line-1], "\r"))
	sb.WriteByte('\n')

	// 2 leading spaces + " | "
	sb.WriteString(strings.Repeat(" ", len(num)+5))

	if e.pos.Column > 1 {
		sb.WriteString(strings.Repeat(" ", e.pos.Column-1))
	}

	sb.WriteString("^\n")

	return sb.String()
}
