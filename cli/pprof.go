//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scrip/log"
	"github.com/ardnew/scrip/pkg"
	"github.com/ardnew/scrip/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling (${pprofModeEnum})." placeholder:"MODE"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory."          type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode was selected.
func (f pprofConfig) start(ctx context.Context) (stop func(), err error) {
	profiler := profile.Profiler{Mode: f.Mode, Dir: f.Dir, Quiet: true}

	session, err := profiler.Start()
	if err != nil {
		return func() {}, err
	}

	if f.Mode != "" {
		log.DebugContext(ctx, "pprof start",
			slog.String("mode", f.Mode),
			slog.String("dir", f.Dir),
		)
	}

	return func() {
		session.Stop()

		if f.Mode != "" {
			log.DebugContext(ctx, "pprof stop",
				slog.String("mode", f.Mode),
				slog.String("dir", f.Dir),
			)
		}
	}, nil
}
