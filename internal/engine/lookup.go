package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/fieldsync/internal/record"
)

// finder resolves reference records for one run.
//
// Candidate id lists and fetched records are memoized for the lifetime of the
// run: a subject with repeated characters, or several rules sharing a search
// text, hit the collection once.
type finder struct {
	coll    record.Collection
	exclude record.ID
	logger  *slog.Logger

	ids     map[string][]record.ID
	records map[record.ID]*record.Record
}

func newFinder(coll record.Collection, exclude record.ID, logger *slog.Logger) *finder {
	return &finder{
		coll:    coll,
		exclude: exclude,
		logger:  logger,
		ids:     make(map[string][]record.ID),
		records: make(map[record.ID]*record.Record),
	}
}

// candidates returns the ids of records holding text as a complete field
// value, in collection order, with the edited record removed.
func (f *finder) candidates(ctx context.Context, text string) ([]record.ID, error) {
	if ids, ok := f.ids[text]; ok {
		return ids, nil
	}

	found, err := f.coll.FindByField(ctx, text)
	if err != nil {
		return nil, err
	}

	ids := make([]record.ID, 0, len(found))
	for _, id := range found {
		if id != f.exclude {
			ids = append(ids, id)
		}
	}
	f.ids[text] = ids
	return ids, nil
}

func (f *finder) record(ctx context.Context, id record.ID) (*record.Record, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	rec, err := f.coll.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	f.records[id] = rec
	return rec, nil
}

// find returns the first candidate for text whose type is recordType, or nil.
//
// Only the first qualifying record is ever returned; later candidates are not
// fetched. A candidate id that vanished between the index read and the fetch
// is skipped.
func (f *finder) find(ctx context.Context, text, recordType string) (*record.Record, error) {
	ids, err := f.candidates(ctx, text)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		rec, err := f.record(ctx, id)
		if errors.Is(err, record.ErrNotFound) {
			f.logger.Debug("candidate vanished", "candidate", id, "text", text)
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.Type == recordType {
			return rec, nil
		}
	}
	return nil, nil
}
