package cmd

import (
	"context"
	"strings"
)

// Eval evaluates program text given on the command line and prints the
// value of its last statement.
type Eval struct {
	Bindings `embed:""`

	Format string   `default:"native" enum:"native,json,yaml" help:"Output format (${enum})." short:"o"`
	Expr   []string `arg:""           help:"Program text; arguments are joined with spaces." name:"expr" passthrough:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := Source{Name: "<expr>", Text: Terminate(strings.Join(e.Expr, " "))}

	ast, err := src.Parse(ctx)
	if err != nil {
		return err
	}

	env, err := e.Environment(ctx)
	if err != nil {
		return err
	}

	v, err := ast.EvaluateInline(ctx, env)
	if err != nil {
		return src.annotate(err)
	}

	return writeValue(StreamsFrom(ctx).Out, e.Format, v)
}
