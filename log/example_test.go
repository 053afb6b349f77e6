package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/scrip/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false),
	)

	logger.Info("program loaded", slog.Int("statements", 4))
	logger.Debug("not shown at the default level")

	// Output:
	// level=INFO msg="program loaded" statements=4
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false),
	).With(slog.String("pkg", "lang"))

	logger.Warn("loop aborted", slog.Int("iteration", 100))

	// Output:
	// level=WARN msg="loop aborted" pkg=lang iteration=100
}
