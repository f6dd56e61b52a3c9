package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/record"
)

func TestRecord_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	seedVocab(t, s)
	ctx := context.Background()

	id := mustAdd(t, s, "Vocab", map[string]string{
		"Word":     "食べる",
		"Sentence": "私は<b>食べる</b>。",
	})

	r, err := s.Record(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "Vocab", r.Type)
	assert.Equal(t, []string{"Word", "Reading", "Sentence"}, r.FieldNames())

	v, ok := r.Get("Sentence")
	require.True(t, ok)
	assert.Equal(t, "私は<b>食べる</b>。", v)
	assert.False(t, r.Changed())
}

func TestRecord_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Record(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, record.ErrNotFound))
}

func TestFieldNames_UnknownType(t *testing.T) {
	s := createTestStore(t)

	_, err := s.FieldNames(context.Background(), "Missing")
	assert.True(t, errors.Is(err, record.ErrNotFound))
}

func TestFindByField_CompleteFieldValueOnly(t *testing.T) {
	s := createTestStore(t)
	seedVocab(t, s)
	ctx := context.Background()

	first := mustAdd(t, s, "Vocab", map[string]string{"Word": "食べる", "Sentence": "x"})
	middle := mustAdd(t, s, "Vocab", map[string]string{"Reading": "食べる"})
	last := mustAdd(t, s, "Vocab", map[string]string{"Sentence": "食べる"})
	mustAdd(t, s, "Vocab", map[string]string{"Sentence": "私は食べる。"})

	ids, err := s.FindByField(ctx, "食べる")
	require.NoError(t, err)
	assert.Equal(t, []record.ID{first, middle, last}, ids, "first, middle and last field positions all match, in id order")
}

func TestFindByField_NoCrossFieldMatch(t *testing.T) {
	s := createTestStore(t)
	seedVocab(t, s)

	mustAdd(t, s, "Vocab", map[string]string{"Word": "食", "Reading": "べる"})

	ids, err := s.FindByField(context.Background(), "食\x1fべる")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.FindByField(context.Background(), "食べる")
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, text := range []string{"べる\x1f", "\x1f食", "\x1f"} {
		ids, err = s.FindByField(context.Background(), text)
		require.NoError(t, err)
		assert.Empty(t, ids, "%q spans a field boundary", text)
	}
}

func TestFindByField_ExactCaseAndWildcards(t *testing.T) {
	s := createTestStore(t)
	seedVocab(t, s)

	id := mustAdd(t, s, "Vocab", map[string]string{"Word": "Cat"})
	mustAdd(t, s, "Vocab", map[string]string{"Word": "C%t"})

	ids, err := s.FindByField(context.Background(), "cat")
	require.NoError(t, err)
	assert.Empty(t, ids, "lookup is case sensitive")

	ids, err = s.FindByField(context.Background(), "C%t")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEqual(t, id, ids[0], "percent is literal")
}

func TestFindByField_EmptyResultIsNotNil(t *testing.T) {
	s := createTestStore(t)

	ids, err := s.FindByField(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Len(t, ids, 0)
}

func TestRecordIDs_ByType(t *testing.T) {
	s := createTestStore(t)
	seedVocab(t, s)

	v1 := mustAdd(t, s, "Vocab", nil)
	mustAdd(t, s, "Kanji", map[string]string{"Kanji": "食"})
	v2 := mustAdd(t, s, "Vocab", nil)

	ids, err := s.RecordIDs(context.Background(), "Vocab")
	require.NoError(t, err)
	assert.Equal(t, []record.ID{v1, v2}, ids)
}
