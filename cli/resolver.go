package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/lang"
	"github.com/ardnew/scrip/log"
)

// configLoopLimit bounds every loop in a configuration file.
const configLoopLimit = 1 << 16

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in scrip. The file is evaluated like any program and every
// binding it exposes becomes the default of the flag with the same name,
// underscores standing in for hyphens:
//
//	let log_level = "debug";
//	let log_pretty = false;
//	let max_iterations = 10000;
//	expose(log_level, log_pretty, max_iterations);
//
// Command-line flags override configuration values. A file that fails to
// parse or evaluate is ignored with a warning.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		ast, err := lang.ParseReader(ctx, r,
			lang.WithLoopCheck(lang.LoopChecks(
				lang.LoopContext(),
				lang.LoopLimit(configLoopLimit),
			)),
		)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		env, err := ast.Evaluate(ctx, nil)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config)
		for name, value := range env.All() {
			cfg[name] = flagValue(value)
		}

		log.TraceContext(ctx, "configuration loaded", slog.Int("bindings", len(cfg)))

		return cfg, nil
	}
}

// config implements [kong.Resolver] over the exposed bindings of a
// configuration program.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}

// flagValue converts a runtime value to a form kong can decode: booleans
// stay booleans, lists join with commas and everything else becomes text.
func flagValue(v any) any {
	switch v := v.(type) {
	case bool, string:
		return v

	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(parts, ",")
	}

	return lang.FormatValue(v)
}
