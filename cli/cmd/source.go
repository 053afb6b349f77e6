package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ardnew/scrip/lang"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// StdinName names the source read from standard input.
const StdinName = "<stdin>"

// Source is one program text and the name it was read from.
type Source struct {
	Name string
	Text string
}

// fileKey uniquely identifies a file by its device and inode numbers, or
// by its resolved path where the platform offers neither.
type fileKey struct {
	dev  uint64
	ino  uint64
	path string
}

// ReadSources reads the named files in order. Duplicates, including the
// same file reached through a symlink or a different relative path, are
// read once. Every "-" is replaced with a single read of standard input,
// placed last. No paths at all means standard input.
func ReadSources(ctx context.Context, paths []string) ([]Source, error) {
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	var (
		srcs  = make([]Source, 0, len(paths))
		seen  = make(map[fileKey]struct{})
		stdin bool
	)

	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		resolved, key, err := identify(path)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		buf, err := os.ReadFile(resolved)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		srcs = append(srcs, Source{Name: path, Text: string(buf)})
	}

	if stdin {
		buf, err := io.ReadAll(StreamsFrom(ctx).In)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", StdinName)).Wrap(err)
		}

		srcs = append(srcs, Source{Name: StdinName, Text: string(buf)})
	}

	return srcs, nil
}

// identify resolves path through symlinks and returns its identity.
func identify(path string) (string, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, err
	}

	if info.IsDir() {
		return "", fileKey{}, fmt.Errorf("%s is a directory", path)
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return resolved, fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, nil //nolint:unconvert
	}

	return resolved, fileKey{path: resolved}, nil
}

// Parse parses the source with the options carried by ctx.
func (s Source) Parse(ctx context.Context, opts ...lang.Option) (*lang.AST, error) {
	ast, err := lang.ParseString(ctx, s.Text, Options(ctx, opts...)...)
	if err != nil {
		return nil, s.annotate(err)
	}

	return ast, nil
}

// annotate attaches the source name to err.
func (s Source) annotate(err error) error {
	return lang.WrapError(err).With(slog.String("file", s.Name))
}

// Diagnose writes err as a diagnostic against s: the source name, the
// message and, when err carries a position, the offending line with a
// caret beneath the column.
func (s Source) Diagnose(w io.Writer, err error) {
	fmt.Fprintf(w, "%s: %v\n", s.Name, err)

	var le *lang.Error
	if errors.As(err, &le) {
		io.WriteString(w, le.Snippet(s.Text)) //nolint:errcheck
	}
}
