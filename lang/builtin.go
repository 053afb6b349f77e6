package lang

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr/builtin"
)

var defaultRegistry = sync.OnceValue(func() *Registry {
	return Builtins(NewRegistry())
})

// DefaultRegistry returns the process-wide registry used when a program is
// parsed without [WithFunctions]. Functions registered on it are visible
// to every such program.
func DefaultRegistry() *Registry { return defaultRegistry() }

// Builtins registers the standard host functions on reg and returns it:
// the expr-lang builtins (len, upper, lower, trim, abs, max, min, now,
// split, join, ...) followed by the path and process helpers.
func Builtins(reg *Registry) *Registry {
	for _, fn := range builtin.Builtins {
		switch {
		case fn.Func != nil:
			call := fn.Func
			reg.Register(fn.Name, func(_ context.Context, args ...any) (any, error) {
				return call(args...)
			})

		case fn.Fast != nil:
			call, name := fn.Fast, fn.Name
			reg.Register(name, func(_ context.Context, args ...any) (any, error) {
				if err := arity(name, args, 1); err != nil {
					return nil, err
				}

				return call(args[0]), nil
			})
		}
	}

	return reg.
		Register("typeof", typeOf).
		Register("getenv", getenv).
		Register("cwd", cwd).
		Register("pathjoin", pathJoin).
		Register("pathabs", pathAbs).
		Register("pathprefix", pathPrefix).
		Register("exists", fileExists)
}

func arity(name string, args []any, n int) error {
	if len(args) != n {
		return ErrEvaluation.Wrapf("%s expects %d argument(s), found %d",
			name, n, len(args))
	}

	return nil
}

func stringArgs(name string, args []any) ([]string, error) {
	out := make([]string, len(args))

	for i, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, ErrType.Wrapf("%s: argument %d must be STRING, found %s",
				name, i+1, RankOf(a))
		}

		out[i] = s
	}

	return out, nil
}

func typeOf(_ context.Context, args ...any) (any, error) {
	if err := arity("typeof", args, 1); err != nil {
		return nil, err
	}

	return RankOf(args[0]).String(), nil
}

func getenv(_ context.Context, args ...any) (any, error) {
	if err := arity("getenv", args, 1); err != nil {
		return nil, err
	}

	s, err := stringArgs("getenv", args)
	if err != nil {
		return nil, err
	}

	return os.Getenv(s[0]), nil
}

func cwd(_ context.Context, args ...any) (any, error) {
	if err := arity("cwd", args, 0); err != nil {
		return nil, err
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, ErrEvaluation.Wrap(err)
	}

	return dir, nil
}

func pathJoin(_ context.Context, args ...any) (any, error) {
	s, err := stringArgs("pathjoin", args)
	if err != nil {
		return nil, err
	}

	return filepath.Join(s...), nil
}

func pathAbs(_ context.Context, args ...any) (any, error) {
	if err := arity("pathabs", args, 1); err != nil {
		return nil, err
	}

	s, err := stringArgs("pathabs", args)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(s[0])
	if err != nil {
		return nil, ErrEvaluation.Wrap(err)
	}

	return abs, nil
}

// pathPrefix prepends items to the PATH-like list in the first argument.
func pathPrefix(_ context.Context, args ...any) (any, error) {
	if len(args) == 0 {
		return nil, ErrEvaluation.Wrapf("pathprefix expects at least 1 argument")
	}

	s, err := stringArgs("pathprefix", args)
	if err != nil {
		return nil, err
	}

	return mung.Make(
		mung.WithSubjectItems(s[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(s[1:]...),
	).String(), nil
}

func fileExists(_ context.Context, args ...any) (any, error) {
	if err := arity("exists", args, 1); err != nil {
		return nil, err
	}

	s, err := stringArgs("exists", args)
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(s[0])

	return err == nil, nil
}
