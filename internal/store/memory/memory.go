// Package memory provides an in-memory record.Collection.
//
// Lookups go through an inverted index from complete field value to the ids
// of records holding that value, kept sorted so FindByField returns ids in
// insertion (id) order without scanning the collection.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/fieldsync/internal/record"
)

var _ record.Collection = (*Store)(nil)

// Store is a mutex-guarded in-memory collection.
type Store struct {
	mu      sync.RWMutex
	models  map[string][]string
	records map[record.ID]*record.Record
	index   map[string][]record.ID
	nextID  record.ID
}

// New returns an empty store.
func New() *Store {
	return &Store{
		models:  make(map[string][]string),
		records: make(map[record.ID]*record.Record),
		index:   make(map[string][]record.ID),
		nextID:  1,
	}
}

// AddModel registers a record type. Re-registering an identical schema is a no-op.
func (s *Store) AddModel(_ context.Context, name string, fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.models[name]; ok {
		if !slices.Equal(existing, fields) {
			return fmt.Errorf("add model %q: already registered with fields %v", name, existing)
		}
		return nil
	}
	s.models[name] = slices.Clone(fields)
	return nil
}

// AddRecord inserts a record with the next free id.
func (s *Store) AddRecord(_ context.Context, recordType string, values map[string]string) (record.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	if err := s.putLocked(id, recordType, values); err != nil {
		return 0, err
	}
	return id, nil
}

// Put inserts a record under an explicit id. The id must be unused.
func (s *Store) Put(_ context.Context, id record.ID, recordType string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(id, recordType, values)
}

func (s *Store) putLocked(id record.ID, recordType string, values map[string]string) error {
	names, ok := s.models[recordType]
	if !ok {
		return fmt.Errorf("add record: record type %q: %w", recordType, record.ErrNotFound)
	}
	if _, taken := s.records[id]; taken {
		return fmt.Errorf("add record: id %s already in use", id)
	}

	r, err := record.New(id, recordType, names, values)
	if err != nil {
		return fmt.Errorf("add record: %w", err)
	}

	s.records[id] = r
	s.indexRecord(r)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return nil
}

// FieldNames returns the ordered field names of a record type.
func (s *Store) FieldNames(_ context.Context, recordType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, ok := s.models[recordType]
	if !ok {
		return nil, fmt.Errorf("record type %q: %w", recordType, record.ErrNotFound)
	}
	return slices.Clone(names), nil
}

// Record returns a copy of the stored record; mutations reach the store only via Persist.
func (s *Store) Record(_ context.Context, id record.ID) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, record.ErrNotFound)
	}
	return r.Clone(), nil
}

// FindByField returns ids of records with a field whose complete value is text.
func (s *Store) FindByField(_ context.Context, text string) ([]record.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.index[text]
	out := make([]record.ID, len(ids))
	copy(out, ids)
	return out, nil
}

// Persist replaces the stored copy of r and re-indexes its values.
func (s *Store) Persist(_ context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[r.ID]
	if !ok || old.Type != r.Type {
		return fmt.Errorf("persist record %s of type %q: %w", r.ID, r.Type, record.ErrNotFound)
	}

	s.unindexRecord(old)
	stored := r.Clone()
	stored.MarkClean()
	s.records[r.ID] = stored
	s.indexRecord(stored)

	r.MarkClean()
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// distinctValues returns each field value of r once.
func distinctValues(r *record.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.FieldNames() {
		v, _ := r.Get(name)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// indexRecord adds r's id under each of its values. Caller holds mu.
func (s *Store) indexRecord(r *record.Record) {
	for _, v := range distinctValues(r) {
		ids := s.index[v]
		i, found := slices.BinarySearch(ids, r.ID)
		if !found {
			s.index[v] = slices.Insert(ids, i, r.ID)
		}
	}
}

// unindexRecord removes r's id from each of its values. Caller holds mu.
func (s *Store) unindexRecord(r *record.Record) {
	for _, v := range distinctValues(r) {
		ids := s.index[v]
		i, found := slices.BinarySearch(ids, r.ID)
		if !found {
			continue
		}
		ids = slices.Delete(ids, i, i+1)
		if len(ids) == 0 {
			delete(s.index, v)
		} else {
			s.index[v] = ids
		}
	}
}
