package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/scrip/log"
)

// Run evaluates programs against a shared root environment and prints the
// bindings they expose.
type Run struct {
	Bindings `embed:""`

	Format string   `default:"native" enum:"native,json,yaml" help:"Output format (${enum})." short:"o"`
	Files  []string `arg:""           help:"Source files or '-' for stdin." optional:"" type:"existingfile"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := ReadSources(ctx, r.Files)
	if err != nil {
		return err
	}

	env, err := r.Environment(ctx)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		ast, err := src.Parse(ctx)
		if err != nil {
			return err
		}

		if _, err := ast.Evaluate(ctx, env); err != nil {
			return src.annotate(err)
		}

		log.DebugContext(ctx, "evaluated source",
			slog.String("file", src.Name),
			slog.Int("root_bindings", len(env.Names())),
		)
	}

	return writeEnvironment(StreamsFrom(ctx).Out, r.Format, env)
}
