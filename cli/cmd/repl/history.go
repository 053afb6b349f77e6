package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/scrip/pkg"
)

// DefaultHistorySize is the number of entries kept when no limit is given.
const DefaultHistorySize = 1000

// History is the list of accepted input lines, oldest first, persisted to
// a file with one entry per line.
type History struct {
	path    string
	limit   int
	entries []string
	mu      sync.RWMutex
}

// NewHistory returns a History persisted at path keeping at most limit
// entries. A limit below one uses [DefaultHistorySize]. An empty path keeps
// history in memory only.
func NewHistory(path string, limit int) *History {
	if limit < 1 {
		limit = DefaultHistorySize
	}

	return &History{path: path, limit: limit}
}

// Load replaces the entries with the contents of the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}

	if n := len(h.entries) - h.limit; n > 0 {
		h.entries = slices.Delete(h.entries, 0, n)
	}

	return scanner.Err()
}

// Add appends line as the newest entry. An earlier copy of the same line
// is removed, and the oldest entries are dropped beyond the limit.
func (h *History) Add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return nil
	}

	rewrite := false

	if i := slices.Index(h.entries, line); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		rewrite = true
	}

	h.entries = append(h.entries, line)

	if n := len(h.entries) - h.limit; n > 0 {
		h.entries = slices.Delete(h.entries, 0, n)
		rewrite = true
	}

	if h.path == "" {
		return nil
	}

	if rewrite {
		return h.rewrite()
	}

	return h.append(line)
}

// At returns the entry at index i; index 0 is the oldest.
func (h *History) At(i int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return "", ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// append writes one entry to the end of the file. Must be called with h.mu
// held.
func (h *History) append(line string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return err
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(line + "\n")

	return err
}

// rewrite replaces the file with the current entries. Must be called with
// h.mu held.
func (h *History) rewrite() error {
	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return err
	}

	var sb strings.Builder
	for _, entry := range h.entries {
		sb.WriteString(entry)
		sb.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
