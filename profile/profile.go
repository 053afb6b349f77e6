package profile

import (
	"errors"
	"fmt"
	"slices"
)

// Tag is the build tag that compiles profiling in.
const Tag = "pprof"

var (
	// ErrDisabled is returned when a mode is requested from a binary built
	// without the pprof tag.
	ErrDisabled = errors.New("profiling is not compiled in (build with -tags " + Tag + ")")

	// ErrUnknownMode is returned for a mode not listed by [Modes].
	ErrUnknownMode = errors.New("unknown profiling mode")
)

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session. The zero Profiler profiles
// nothing.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses a temporary directory
	Quiet bool   // suppress the start and stop messages
}

// Start begins profiling. The returned Stopper is never nil and is safe
// to call even when Start fails.
func (p Profiler) Start() (Stopper, error) {
	if p.Mode == "" {
		return nop{}, nil
	}

	if !Enabled {
		return nop{}, ErrDisabled
	}

	if !slices.Contains(Modes(), p.Mode) {
		return nop{}, fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}

	return start(p), nil
}

type nop struct{}

func (nop) Stop() {}
