package history

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestStoreAppendAndRecent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "queries.jsonl")
	s := &Store{Path: path}

	if got, err := s.Recent(10); err != nil || len(got) != 0 {
		t.Fatalf("Recent on missing file: got=%v err=%v", got, err)
	}
	for _, q := range []string{"   ", "cats", "dogs", "cats", "birds"} {
		if err := s.Append(q); err != nil {
			t.Fatalf("Append %q: %v", q, err)
		}
	}

	got, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if want := []string{"birds", "cats", "dogs"}; !slices.Equal(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
	if got, _ := s.Recent(2); len(got) != 2 {
		t.Fatalf("Recent(2) = %v", got)
	}
}

func TestStoreSkipsGarbageLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "queries.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join([]string{
		`{"query":"one","ts":"2025-01-01T00:00:00Z"}`,
		`{not json}`,
		`{"query":"two","ts":"2025-01-01T00:00:00Z"}`,
		"",
	}, "\n")), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := (&Store{Path: path}).Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if want := []string{"two", "one"}; !slices.Equal(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
}

func TestStoreEmptyPath(t *testing.T) {
	t.Parallel()

	var s *Store
	if err := s.Append("hi"); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("nil store err = %v", err)
	}
	if _, err := (&Store{}).Recent(1); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("empty path err = %v", err)
	}
}
