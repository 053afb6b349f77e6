// Package log is a small leveled logger over [log/slog].
//
// A [Logger] is configured once with functional options and is immutable
// afterward:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("program loaded", slog.Int("statements", 12))
//
// Attributes take [slog.Attr] values only, never alternating key/value
// arguments. [Logger.With] returns a logger that adds attributes to every
// record.
//
// # Levels
//
// Besides the slog levels there is [LevelTrace], four steps below debug.
// The interpreter emits its per-node breadcrumbs at trace level so they
// stay out of debug output.
//
// # Output
//
// Records are JSON ([FormatJSON], the default) or key=value text
// ([FormatText]). With [WithPretty] (the default) both are rendered for
// people: JSON as an indented block, text on one line, colored with
// lipgloss when the output is a terminal.
//
// # Default logger
//
// The package-level functions ([Info], [DebugContext], ...) write through
// a process-wide logger that [Config] reconfigures. Methods without a
// context argument use [DefaultContextProvider].
//
// The zero Logger discards all records.
package log
