package cmd

import (
	"context"
	"fmt"
	"log/slog"
)

// Check parses programs without evaluating them and reports every syntax
// error with the offending source line.
type Check struct {
	Quiet bool     `help:"Only set the exit status." short:"q"`
	Files []string `arg:""                           help:"Source files or '-' for stdin." optional:"" type:"existingfile"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := ReadSources(ctx, c.Files)
	if err != nil {
		return err
	}

	streams := StreamsFrom(ctx)

	failed := 0

	for _, src := range srcs {
		_, err := src.Parse(ctx)
		if err == nil {
			if !c.Quiet {
				fmt.Fprintf(streams.Out, "%s: ok\n", src.Name)
			}

			continue
		}

		failed++

		if !c.Quiet {
			src.Diagnose(streams.Out, err)
		}
	}

	if failed > 0 {
		return ErrCheck.With(
			slog.Int("failed", failed),
			slog.Int("sources", len(srcs)),
		)
	}

	return nil
}
