package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/lang"
	"github.com/ardnew/scrip/log"
	"github.com/ardnew/scrip/profile"
)

// Init writes a configuration file holding the current flag values. The
// file is a scrip program that exposes one binding per flag.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: command context undefined")
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: configuration path undefined")
	}

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	ast, err := lang.ParseString(ctx, ConfigSource(ktx))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}
	defer file.Close()

	if err := ast.Format(file); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if _, err := file.WriteString("\n"); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", path),
		slog.Int("statements", len(ast.Statements())),
	)

	return nil
}

// ConfigSource renders the global flags of ktx as a scrip program: one
// declaration per flag, named with underscores, and a final expose.
func ConfigSource(ktx *kong.Context) string {
	var (
		sb    strings.Builder
		names []string
	)

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		lit, ok := literalText(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		names = append(names, name)

		fmt.Fprintf(&sb, "let %s = %s;\n", name, lit)
	}

	if len(names) > 0 {
		fmt.Fprintf(&sb, "expose(%s);\n", strings.Join(names, ", "))
	}

	return sb.String()
}

// literalText returns the scrip literal for a flag value. Values with no
// literal form, such as lists or strings the lexer cannot quote, are
// skipped.
func literalText(v any) (string, bool) {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v), true

	case string:
		if v == "" || strings.ContainsAny(v, "\"\\\n") {
			return "", false
		}

		return `"` + v + `"`, true

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true

	case float32, float64:
		s := fmt.Sprint(v)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		return s, true

	case fmt.Stringer:
		return literalText(v.String())
	}

	return "", false
}
