package cli

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/log"
)

// logLevel configures the default logger as a side effect of parsing, so
// the level applies to messages emitted while the rest of the command line
// is still being parsed.
type logLevel struct{ log.Level }

func (l *logLevel) UnmarshalText(text []byte) error {
	if err := l.Level.UnmarshalText(text); err != nil {
		return err
	}

	log.Config(log.WithLevel(l.Level))

	return nil
}

// logFormat configures the default logger format as a side effect of
// parsing. See [logLevel].
type logFormat struct{ log.Format }

func (f *logFormat) UnmarshalText(text []byte) error {
	if err := f.Format.UnmarshalText(text); err != nil {
		return err
	}

	log.Config(log.WithFormat(f.Format))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    help:"Set log level (${logLevels})."  placeholder:"LEVEL"`
	Format     logFormat `default:"json"    help:"Set log format (${logFormats})." placeholder:"FORMAT"`
	TimeLayout string    `default:"rfc3339" help:"Set timestamp layout: a Go layout or a name such as kitchen or none."`
	Caller     bool      `default:"false"   help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"    help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevels":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormats": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logging flag to the default logger, which
// writes to w.
func (f *logConfig) start(ctx context.Context, w io.Writer) {
	log.Config(
		log.WithOutput(w),
		log.WithLevel(f.Level.Level),
		log.WithFormat(f.Format.Format),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", f.Level.String()),
		slog.String("format", f.Format.String()),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logging flags found in args before kong parses them, so
// the logger is configured regardless of flag position. Boolean flags in
// particular never pass through a TextUnmarshaler.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return
		}

		name, value, assigned := strings.Cut(args[i], "=")

		negated := false
		if rest, ok := strings.CutPrefix(name, "--no-log-"); ok {
			name, negated = rest, true
		} else if rest, ok := strings.CutPrefix(name, "--log-"); ok {
			name = rest
		} else {
			continue
		}

		switch name {
		case "level", "format":
			if negated {
				continue
			}

			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if name == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "pretty", "caller":
			enable := true
			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				enable = v
			}

			if negated {
				enable = !enable
			}

			if name == "pretty" {
				f.Pretty = enable
				log.Config(log.WithPretty(enable))
			} else {
				f.Caller = enable
				log.Config(log.WithCaller(enable))
			}
		}
	}
}
