package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/cli/cmd"
	"github.com/ardnew/scrip/cli/cmd/repl"
	"github.com/ardnew/scrip/lang"
	"github.com/ardnew/scrip/log"
	"github.com/ardnew/scrip/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// CLI is the top-level command-line interface for scrip.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	MaxIterations int              `default:"0" help:"Abort any loop after N iterations (0 for no limit)." placeholder:"N"`
	Version       kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Evaluate programs and print the bindings they expose."`
	Eval  cmd.Eval  `cmd:""                    help:"Evaluate program text and print its last value."`
	Fmt   cmd.Fmt   `cmd:""                    help:"Format programs or dump their syntax tree or tokens."`
	Check cmd.Check `cmd:""                    help:"Report syntax errors without evaluating."`
	Repl  repl.Repl `cmd:""                    help:"Start an interactive session."`
	Init  cmd.Init  `cmd:""                    help:"Write a configuration file holding the current flag values."`
}

// Run executes the scrip CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
// Commands read and write the streams carried by ctx (see [cmd.WithStreams]).
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)
	streams := cmd.StreamsFrom(ctx)

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Config(log.WithOutput(streams.Err))

	// Apply logging flags before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(streams.Out, streams.Err),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx, streams.Err)

	stop, err := cli.Pprof.start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx,
		lang.WithLogger(log.Default()),
		lang.WithLoopCheck(lang.LoopChecks(
			lang.LoopContext(),
			lang.LoopLimit(cli.MaxIterations),
		)),
	)

	log.DebugContext(ctx, "running command",
		slog.String("command", ktx.Command()),
		slog.Int("max_iterations", cli.MaxIterations),
	)

	// The singleton provider reads ctx when the command runs, so commands
	// receive the context built above.
	return ktx.Run()
}
