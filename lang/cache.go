package lang

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// treeCache stores parsed programs keyed by the xxh3 hash of their source.
// Trees are immutable, so every AST parsed from the same text shares one.
var treeCache sync.Map // map[uint64]*cacheEntry

type cacheEntry struct {
	once   sync.Once
	source string
	root   *Scope
	err    error
}

// ClearCache discards every cached parse tree.
func ClearCache() {
	treeCache.Range(func(key, _ any) bool {
		treeCache.Delete(key)

		return true
	})
}

// parseCached returns the tree for src, parsing it at most once per
// distinct source text. The second result reports a cache hit.
func parseCached(src string) (*Scope, bool, error) {
	key := xxh3.HashString(src)

	fresh := &cacheEntry{source: src}

	v, loaded := treeCache.LoadOrStore(key, fresh)

	entry, _ := v.(*cacheEntry)
	if entry.source != src {
		// Hash collision: parse without caching.
		root, err := parseProgram(src)

		return root, false, err
	}

	entry.once.Do(func() {
		entry.root, entry.err = parseProgram(src)
	})

	if entry.err != nil {
		treeCache.CompareAndDelete(key, entry)
	}

	return entry.root, loaded, entry.err
}

// ParseReader parses an AST from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*AST, error) {
	// Wrap reader with async read-ahead so input is prefetched while the
	// previous chunk is being copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}
