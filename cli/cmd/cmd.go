package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/lang"
)

type (
	contextKey struct{}
	optionsKey struct{}
	streamsKey struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// WithOptions returns a context whose commands parse every program with
// opts, ahead of any options the command adds itself.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// Options returns the options installed by [WithOptions] followed by
// extra.
func Options(ctx context.Context, extra ...lang.Option) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return append(append([]lang.Option(nil), opts...), extra...)
}

// Streams are the standard streams a command reads and writes.
// Nil fields fall back to the process streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStreams returns a context whose commands use s.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

// StreamsFrom returns the streams installed by [WithStreams].
func StreamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// Terminate appends the statement terminator to text when its last
// statement lacks one, so command-line and interactive input may omit it.
func Terminate(text string) string {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" || strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return text
	}

	return trimmed + ";"
}
