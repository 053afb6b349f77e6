package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/scrip/lang"
)

// Fmt renders parsed programs in normalized source form, as a syntax tree
// dump, or as the token stream.
type Fmt struct {
	Format string   `default:"native" enum:"native,json,yaml,tokens" help:"Output format (${enum})." short:"o"`
	Files  []string `arg:""           help:"Source files or '-' for stdin." optional:"" type:"existingfile"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := ReadSources(ctx, f.Files)
	if err != nil {
		return err
	}

	out := StreamsFrom(ctx).Out

	for _, src := range srcs {
		if err := f.format(ctx, out, src); err != nil {
			return err
		}
	}

	return nil
}

func (f *Fmt) format(ctx context.Context, w io.Writer, src Source) error {
	if f.Format == formatTokens {
		return writeTokens(w, src)
	}

	ast, err := src.Parse(ctx)
	if err != nil {
		return err
	}

	if f.Format != formatNative {
		return encode(w, f.Format, lang.NodeMap(ast.Root))
	}

	if len(ast.Statements()) == 0 {
		return nil
	}

	if err := ast.Format(w); err != nil {
		return err
	}

	_, err = io.WriteString(w, "\n")

	return err
}

// writeTokens writes one token per line: position, kind and quoted text.
func writeTokens(w io.Writer, src Source) error {
	toks, err := lang.Tokenize(src.Text)
	if err != nil {
		return src.annotate(err)
	}

	for _, tok := range toks {
		if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%q\n",
			tok.Pos.Line, tok.Pos.Column, tok.Kind, tok.Text); err != nil {
			return err
		}
	}

	return nil
}
