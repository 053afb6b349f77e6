// Package cli contains the command line interface for scrip.
//
// # Usage
//
//	scrip [flags] [run] [FILE...]     evaluate programs, print exposed bindings
//	scrip eval EXPR...                print the value of the last statement
//	scrip fmt [-o FORMAT] [FILE...]   normalize, dump (json, yaml) or tokenize
//	scrip check [FILE...]             report syntax errors
//	scrip repl [FILE...]              interactive session
//	scrip init                        write the configuration file
//
// A FILE of "-", or no FILE at all, reads standard input.
//
// # Configuration
//
// The configuration file is itself a scrip program, read from
// $XDG_CONFIG_HOME/scrip/config (see [github.com/ardnew/scrip/pkg.ConfigDir]).
// Every binding it exposes sets the default of the flag of the same name,
// with underscores for hyphens:
//
//	let log_level = "debug";
//	let max_iterations = 100000;
//	expose(log_level, max_iterations);
//
// A JSON file of the same name with a .json extension is read as well.
// Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (rfc3339, kitchen, none, or a Go layout)
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorized output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile kind (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: output directory (default: $XDG_CACHE_HOME/scrip/pprof)
package cli
