// Package profile wraps [github.com/pkg/profile] so the scrip command can
// profile itself.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	scrip --pprof-mode cpu run program.scrip
//	go tool pprof -http=: ~/.cache/scrip/pprof/cpu.pprof
//
// Without the tag [Enabled] is false, [Modes] is empty and starting a
// [Profiler] with a mode fails with [ErrDisabled]. A pprof build also
// registers the net/http/pprof handlers on the default mux.
package profile
