package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_AddAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	h := NewHistory(path, 3)

	for _, line := range []string{"a", "b", "b", "  ", "c", "a", "d"} {
		if err := h.Add(line); err != nil {
			t.Fatalf("Add(%q): %v", line, err)
		}
	}

	want := []string{"c", "a", "d"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}

	loaded := NewHistory(path, 3)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded Entries = %v, want %v", got, want)
	}
}

func TestHistory_AppendsUntilRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 0)

	for _, line := range []string{"one", "two"} {
		if err := h.Add(line); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(data) != "one\ntwo\n" {
		t.Errorf("history file = %q", data)
	}

	if err := h.Add("one"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, _ = os.ReadFile(path)
	if string(data) != "two\none\n" {
		t.Errorf("history file after dedupe = %q", data)
	}
}

func TestHistory_LoadTrimsToLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("1\n\n2\n3\n4\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path, 2)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := h.Entries(); !slices.Equal(got, []string{"3", "4"}) {
		t.Errorf("Entries = %v", got)
	}

	missing := NewHistory(filepath.Join(t.TempDir(), "none"), 0)
	if err := missing.Load(); err != nil || missing.Len() != 0 {
		t.Errorf("Load(missing) = %v, len %d", err, missing.Len())
	}
}

func TestHistory_At(t *testing.T) {
	h := NewHistory("", 0)
	h.Add("first") //nolint:errcheck

	if got, err := h.At(0); err != nil || got != "first" {
		t.Errorf("At(0) = %q, %v", got, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.At(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
