package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/record"
)

func newVocabStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.AddModel(context.Background(), "Vocab", []string{"Word", "Reading", "Sentence"}))
	return s
}

func TestFindByField_IdOrderAcrossFieldPositions(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, 30, "Vocab", map[string]string{"Sentence": "食べる"}))
	require.NoError(t, s.Put(ctx, 10, "Vocab", map[string]string{"Word": "食べる"}))
	require.NoError(t, s.Put(ctx, 20, "Vocab", map[string]string{"Reading": "食べる", "Sentence": "食べる"}))
	require.NoError(t, s.Put(ctx, 40, "Vocab", map[string]string{"Sentence": "私は食べる。"}))

	ids, err := s.FindByField(ctx, "食べる")
	require.NoError(t, err)
	assert.Equal(t, []record.ID{10, 20, 30}, ids)
}

func TestFindByField_ReturnsCopy(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()
	id, err := s.AddRecord(ctx, "Vocab", map[string]string{"Word": "a"})
	require.NoError(t, err)

	ids, _ := s.FindByField(ctx, "a")
	ids[0] = 999

	again, _ := s.FindByField(ctx, "a")
	assert.Equal(t, []record.ID{id}, again)
}

func TestPersist_Reindexes(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()

	id, err := s.AddRecord(ctx, "Vocab", map[string]string{"Word": "old"})
	require.NoError(t, err)

	r, err := s.Record(ctx, id)
	require.NoError(t, err)
	require.NoError(t, r.Set("Word", "new"))
	require.NoError(t, s.Persist(ctx, r))
	assert.False(t, r.Changed())

	ids, _ := s.FindByField(ctx, "old")
	assert.Empty(t, ids)
	ids, _ = s.FindByField(ctx, "new")
	assert.Equal(t, []record.ID{id}, ids)
}

func TestRecord_ReturnsIndependentCopy(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()
	id, err := s.AddRecord(ctx, "Vocab", map[string]string{"Word": "a"})
	require.NoError(t, err)

	r, _ := s.Record(ctx, id)
	require.NoError(t, r.Set("Word", "b"))

	stored, _ := s.Record(ctx, id)
	v, _ := stored.Get("Word")
	assert.Equal(t, "a", v, "unpersisted edits do not leak into the store")
}

func TestAddRecord_Errors(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()

	_, err := s.AddRecord(ctx, "Missing", nil)
	assert.True(t, errors.Is(err, record.ErrNotFound))

	require.NoError(t, s.Put(ctx, 5, "Vocab", nil))
	err = s.Put(ctx, 5, "Vocab", nil)
	assert.Error(t, err)

	id, err := s.AddRecord(ctx, "Vocab", nil)
	require.NoError(t, err)
	assert.Equal(t, record.ID(6), id, "auto ids continue after explicit ones")
	assert.Equal(t, 2, s.Len())
}

func TestPersist_UnknownRecord(t *testing.T) {
	s := newVocabStore(t)
	r, err := record.New(1, "Vocab", []string{"Word", "Reading", "Sentence"}, nil)
	require.NoError(t, err)

	err = s.Persist(context.Background(), r)
	assert.True(t, errors.Is(err, record.ErrNotFound))
}

func TestAddModel_Conflict(t *testing.T) {
	s := newVocabStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddModel(ctx, "Vocab", []string{"Word", "Reading", "Sentence"}))
	assert.Error(t, s.AddModel(ctx, "Vocab", []string{"Word"}))

	_, err := s.FieldNames(ctx, "Other")
	assert.True(t, errors.Is(err, record.ErrNotFound))
}
