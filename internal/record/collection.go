package record

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Collection.Record for an unknown id and by
// Collection.FieldNames for an unknown record type.
var ErrNotFound = errors.New("not found")

// Collection is the host's record store as seen by the propagation engine.
//
// FindByField returns ids of records having at least one field whose complete
// stored value equals text, in the store's natural (id) order. A text spanning
// two fields never matches.
type Collection interface {
	FieldNames(ctx context.Context, recordType string) ([]string, error)
	Record(ctx context.Context, id ID) (*Record, error)
	FindByField(ctx context.Context, text string) ([]ID, error)
	Persist(ctx context.Context, r *Record) error
}

// Notifier delivers best-effort, non-blocking notices to the user.
// Implementations must not fail the caller.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) {
	f(message)
}
