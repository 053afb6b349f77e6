package log

import (
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Level is the severity of a log message. It extends [slog.Level] with
// [LevelTrace], used for the interpreter's step-by-step breadcrumbs.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a logger made without [WithLevel].
const DefaultLevel = LevelInfo

var levelName = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// String returns the lowercase level name. Levels between the named ones
// render as the nearest lower name plus an offset, e.g. "info+2".
func (l Level) String() string {
	if s, ok := levelName[l]; ok {
		return s
	}

	base := LevelTrace

	for _, named := range []Level{LevelError, LevelWarn, LevelInfo, LevelDebug} {
		if l > named {
			base = named

			break
		}
	}

	off := int(l) - int(base)
	if off < 0 {
		return levelName[base] + strconv.Itoa(off)
	}

	return levelName[base] + "+" + strconv.Itoa(off)
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler]. Unlike [ParseLevel]
// it rejects unknown names.
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if strings.EqualFold(s, levelName[LevelTrace]) {
		*l = LevelTrace

		return nil
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level %q", s)
	}

	*l = Level(sl)

	return nil
}

// ParseLevel returns the level named by s, or [DefaultLevel] if s names
// none. Names are case-insensitive and may carry an offset ("warn-1").
func ParseLevel(s string) Level {
	var l Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return l
}

// Levels yields the named levels from most to least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// Format selects the encoding of log records.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// DefaultFormat is the format of a logger made without [WithFormat].
const DefaultFormat = FormatJSON

var formatName = [...]string{FormatJSON: "json", FormatText: "text"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatName) {
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}

	return formatName[f]
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Format) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))

	for i, name := range formatName {
		if s == name {
			*f = Format(i)

			return nil
		}
	}

	return fmt.Errorf("invalid log format %q", s)
}

// ParseFormat returns the format named by s, or [DefaultFormat].
func ParseFormat(s string) Format {
	var f Format
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return DefaultFormat
	}

	return f
}

// Formats yields the format names.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatName {
			if !yield(name) {
				return
			}
		}
	}
}
