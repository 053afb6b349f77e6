package cmd

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scrip/lang"
)

// Bindings are host variables declared in the root environment before any
// program runs. Files are bound first, so --var overrides --vars.
type Bindings struct {
	Var  []string `help:"Bind host variable NAME to VALUE, read as a scrip literal when it parses as one." placeholder:"NAME=VALUE" sep:"none" short:"D"`
	Vars []string `help:"Bind every top-level key of a YAML mapping."                                       placeholder:"FILE"       sep:"none" type:"existingfile"`
}

// Environment returns a root environment holding the bindings.
func (b Bindings) Environment(ctx context.Context) (*lang.Environment, error) {
	env := lang.NewEnvironment()

	for _, file := range b.Vars {
		vars, err := readVars(file)
		if err != nil {
			return nil, ErrBinding.With(slog.String("file", file)).Wrap(err)
		}

		for name, value := range vars {
			if err := bind(env, name, hostValue(value)); err != nil {
				return nil, ErrBinding.With(slog.String("file", file)).Wrap(err)
			}
		}
	}

	for _, pair := range b.Var {
		name, text, ok := strings.Cut(pair, "=")
		if name = strings.TrimSpace(name); !ok || name == "" {
			return nil, ErrBinding.With(slog.String("var", pair)).
				Wrap(errors.New("want NAME=VALUE"))
		}

		if err := bind(env, name, Literal(ctx, text)); err != nil {
			return nil, ErrBinding.With(slog.String("var", pair)).Wrap(err)
		}
	}

	return env, nil
}

func bind(env *lang.Environment, name string, value any) error {
	if env.Exists(name) {
		return env.Set(name, value)
	}

	return env.Declare(name, value)
}

func readVars(file string) (map[string]any, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var vars map[string]any
	if err := yaml.Unmarshal(buf, &vars); err != nil {
		return nil, err
	}

	return vars, nil
}

// Literal evaluates text as a scrip expression over no variables and no
// functions. Text that does not evaluate to a value is returned verbatim,
// so "3" binds an INT, "true" a BOOLEAN and "hello" the STRING "hello".
func Literal(ctx context.Context, text string) any {
	ast, err := lang.ParseString(ctx, Terminate(text),
		lang.WithFunctions(lang.NewRegistry()),
		lang.WithLoopCheck(lang.LoopLimit(1)),
	)
	if err != nil {
		return text
	}

	v, err := ast.EvaluateInline(ctx, lang.NewEnvironment())
	if err != nil || v == nil {
		return text
	}

	return v
}

// hostValue maps decoded YAML onto the runtime ranks: unsigned integers
// that fit become LONG, everything else keeps its decoded type.
func hostValue(v any) any {
	switch v := v.(type) {
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}

		return float64(v)

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = hostValue(e)
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = hostValue(e)
		}

		return out
	}

	return v
}
