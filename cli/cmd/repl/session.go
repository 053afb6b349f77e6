package repl

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/scrip/cli/cmd"
	"github.com/ardnew/scrip/lang"
	"github.com/ardnew/scrip/log"
)

// inputName names interactive input in diagnostics.
const inputName = "<repl>"

// Session is the state behind an interactive prompt: one environment that
// every accepted line is evaluated into, plus the text of those lines.
type Session struct {
	bindings cmd.Bindings
	sources  []cmd.Source
	env      *lang.Environment
	funcs    *lang.Registry
	lines    []string
}

// NewSession returns a session whose environment holds the bindings and
// everything the named files declare. Files are read but standard input
// never is, since the prompt owns it.
func NewSession(
	ctx context.Context,
	bindings cmd.Bindings,
	files []string,
) (*Session, error) {
	s := &Session{bindings: bindings, funcs: lang.DefaultRegistry()}

	if len(files) > 0 {
		srcs, err := cmd.ReadSources(ctx, files)
		if err != nil {
			return nil, err
		}

		s.sources = srcs
	}

	env, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.env = env

	return s, nil
}

// load builds a fresh environment from the bindings and sources.
func (s *Session) load(ctx context.Context) (*lang.Environment, error) {
	env, err := s.bindings.Environment(ctx)
	if err != nil {
		return nil, err
	}

	for _, src := range s.sources {
		if _, err := s.evaluate(ctx, src, env); err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "loaded source",
			slog.String("file", src.Name),
			slog.Int("bindings", len(env.Names())),
		)
	}

	return env, nil
}

// evaluate runs src directly in env so its declarations stay visible.
func (s *Session) evaluate(
	ctx context.Context,
	src cmd.Source,
	env *lang.Environment,
) (any, error) {
	ast, err := src.Parse(ctx)
	if err != nil {
		return nil, err
	}

	s.funcs = ast.Functions()

	v, err := ast.EvaluateInline(ctx, env)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", src.Name))
	}

	return v, nil
}

// Eval evaluates one line of input and returns the value of its last
// statement. The terminating semicolon may be omitted. Lines that evaluate
// without error are kept for [Session.Source].
func (s *Session) Eval(ctx context.Context, line string) (any, error) {
	src := cmd.Source{Name: inputName, Text: cmd.Terminate(line)}

	v, err := s.evaluate(ctx, src, s.env)
	if err != nil {
		return nil, err
	}

	s.lines = append(s.lines, strings.TrimSpace(src.Text))

	return v, nil
}

// Diagnose renders err against line the way the check command does.
func Diagnose(line string, err error) string {
	var sb strings.Builder

	cmd.Source{Name: inputName, Text: cmd.Terminate(line)}.Diagnose(&sb, err)

	return strings.TrimRight(sb.String(), "\n")
}

// Reset discards every binding made at the prompt, restoring the state
// right after the session started.
func (s *Session) Reset(ctx context.Context) error {
	return s.Replace(ctx, "")
}

// Replace restores the starting state and then evaluates program in it.
// On error the session is left unchanged.
func (s *Session) Replace(ctx context.Context, program string) error {
	env, err := s.load(ctx)
	if err != nil {
		return err
	}

	var lines []string

	if strings.TrimSpace(program) != "" {
		src := cmd.Source{Name: inputName, Text: cmd.Terminate(program)}
		if _, err := s.evaluate(ctx, src, env); err != nil {
			return err
		}

		lines = []string{strings.TrimSpace(src.Text)}
	}

	s.env, s.lines = env, lines

	return nil
}

// Source returns the accepted lines as one program.
func (s *Session) Source() string {
	if len(s.lines) == 0 {
		return ""
	}

	return strings.Join(s.lines, "\n") + "\n"
}

// Vars yields every binding in the session environment, sorted by name.
func (s *Session) Vars() iter.Seq2[string, any] { return s.env.All() }

// IsFunction reports whether name resolves to a host function.
func (s *Session) IsFunction(name string) bool {
	_, err := s.funcs.Resolve(name)

	return err == nil
}

// Candidates returns the names worth completing at the top level:
// keywords, visible variables and host functions, sorted and unique.
func (s *Session) Candidates() []string {
	seen := make(map[string]struct{})

	for _, names := range [][]string{
		lang.Keywords(), s.env.Visible(), s.funcs.Names(),
	} {
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Members returns the keys of the mapping reached by the dotted path,
// sorted, or nil when path does not name a mapping.
func (s *Session) Members(path string) []string {
	segments := strings.Split(path, ".")

	v, ok := s.env.Get(segments[0])
	if !ok {
		return nil
	}

	for _, seg := range segments[1:] {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}

		if v, ok = m[seg]; !ok {
			return nil
		}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}

// listVars renders every binding as "name = value", one per line.
func (s *Session) listVars() string {
	var sb strings.Builder

	for name, v := range s.Vars() {
		fmt.Fprintf(&sb, "%s = %s\n", name, lang.FormatValue(v))
	}

	return strings.TrimRight(sb.String(), "\n")
}
