package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/config"
	"github.com/roach88/fieldsync/internal/record"
	"github.com/roach88/fieldsync/internal/store/memory"
)

var (
	vocabFields = []string{"Word", "Reading", "Sentence"}
	kanjiFields = []string{"Kanji", "Meaning"}
	cardFields  = []string{"Expression", "Sentence", "Meaning", "Kanji1", "Kanji2"}
)

// newTestStore returns a memory store with the Vocab, Kanji and Card models.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.AddModel(ctx, "Vocab", vocabFields))
	require.NoError(t, s.AddModel(ctx, "Kanji", kanjiFields))
	require.NoError(t, s.AddModel(ctx, "Card", cardFields))
	return s
}

func mustAdd(t *testing.T, s *memory.Store, recordType string, values map[string]string) record.ID {
	t.Helper()
	id, err := s.AddRecord(context.Background(), recordType, values)
	require.NoError(t, err)
	return id
}

func mustRecord(t *testing.T, c record.Collection, id record.ID) *record.Record {
	t.Helper()
	rec, err := c.Record(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func field(t *testing.T, rec *record.Record, name string) string {
	t.Helper()
	v, ok := rec.Get(name)
	require.True(t, ok, "field %q missing", name)
	return v
}

// sentenceRule copies Vocab.Sentence into Card.Sentence with bracket markup removed.
func sentenceRule() config.WholeTextRule {
	return config.WholeTextRule{
		Name:             "Sentence->Sentence",
		SourceField:      "Sentence",
		DestinationField: "Sentence",
		SourceType:       "Vocab",
		RemovePattern:    regexp.MustCompile(`\[.*?\]`),
	}
}

// kanjiRule copies Kanji.Meaning of each ideographic subject character into Kanji1, Kanji2.
func kanjiRule() config.CharacterRule {
	filter, _ := config.LookupFilter(config.FilterIdeographic)
	return config.CharacterRule{
		Name:              "Meaning->Kanji1,Kanji2",
		SourceField:       "Meaning",
		SourceType:        "Kanji",
		DestinationFields: []string{"Kanji1", "Kanji2"},
		FilterName:        config.FilterIdeographic,
		Filter:            filter,
	}
}

func testConfig(whole []config.WholeTextRule, chars []config.CharacterRule) *config.Config {
	return &config.Config{
		SubjectField: "Expression",
		WholeText:    whole,
		Characters:   chars,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(c record.Collection, cfg *config.Config, opts ...Option) *Engine {
	base := []Option{WithLogger(quietLogger())}
	return New(c, cfg, append(base, opts...)...)
}

// countingCollection records calls made through the Collection interface.
type countingCollection struct {
	*memory.Store
	finds    map[string]int
	fetches  map[record.ID]int
	persists int
}

func newCountingCollection(s *memory.Store) *countingCollection {
	return &countingCollection{
		Store:   s,
		finds:   make(map[string]int),
		fetches: make(map[record.ID]int),
	}
}

func (c *countingCollection) FindByField(ctx context.Context, text string) ([]record.ID, error) {
	c.finds[text]++
	return c.Store.FindByField(ctx, text)
}

func (c *countingCollection) Record(ctx context.Context, id record.ID) (*record.Record, error) {
	c.fetches[id]++
	return c.Store.Record(ctx, id)
}

func (c *countingCollection) Persist(ctx context.Context, r *record.Record) error {
	c.persists++
	return c.Store.Persist(ctx, r)
}

var errBackend = errors.New("backend unavailable")

// failingCollection fails FindByField for the texts in failFind and every Persist when failPersist is set.
type failingCollection struct {
	*memory.Store
	failFind    map[string]bool
	failPersist bool
}

func (c *failingCollection) FindByField(ctx context.Context, text string) ([]record.ID, error) {
	if c.failFind[text] {
		return nil, errBackend
	}
	return c.Store.FindByField(ctx, text)
}

func (c *failingCollection) Persist(ctx context.Context, r *record.Record) error {
	if c.failPersist {
		return errBackend
	}
	return c.Store.Persist(ctx, r)
}

// recordingObserver keeps everything it observes.
type recordingObserver struct {
	outcomes []Outcome
	results  []*Result
}

func (o *recordingObserver) ObserveOutcome(out Outcome) { o.outcomes = append(o.outcomes, out) }
func (o *recordingObserver) ObserveResult(r *Result)    { o.results = append(o.results, r) }
