package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/fieldsync/internal/record"
)

// createTestStore creates a new SQLite store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedVocab registers the "Vocab" and "Kanji" types used across store tests.
func seedVocab(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.AddModel(ctx, "Vocab", []string{"Word", "Reading", "Sentence"}); err != nil {
		t.Fatalf("AddModel(Vocab) failed: %v", err)
	}
	if err := s.AddModel(ctx, "Kanji", []string{"Kanji", "Meaning"}); err != nil {
		t.Fatalf("AddModel(Kanji) failed: %v", err)
	}
}

// mustAdd inserts a record and fails the test on error.
func mustAdd(t *testing.T, s *Store, recordType string, values map[string]string) record.ID {
	t.Helper()
	id, err := s.AddRecord(context.Background(), recordType, values)
	if err != nil {
		t.Fatalf("AddRecord(%s) failed: %v", recordType, err)
	}
	return id
}
