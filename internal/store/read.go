package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/fieldsync/internal/record"
)

var _ record.Collection = (*Store)(nil)

// FieldNames returns the ordered field names of a record type.
// Returns an error wrapping record.ErrNotFound for an unknown type.
func (s *Store) FieldNames(ctx context.Context, recordType string) ([]string, error) {
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx, s.dialect.selectModel, recordType).Scan(&fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record type %q: %w", recordType, record.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query model %q: %w", recordType, err)
	}
	return unmarshalFieldNames(fieldsJSON)
}

// Record loads a record by id.
// Returns an error wrapping record.ErrNotFound if no record has the id.
func (s *Store) Record(ctx context.Context, id record.ID) (*record.Record, error) {
	var model, flds, fieldsJSON string
	err := s.db.QueryRowContext(ctx, s.dialect.selectRecord, int64(id)).Scan(&model, &flds, &fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, record.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query record %s: %w", id, err)
	}

	names, err := unmarshalFieldNames(fieldsJSON)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	return record.FromFlat(id, model, names, flds)
}

// FindByField returns ids of records with a field whose complete value is text,
// in id order. Returns an empty slice (not nil) when nothing matches.
// No field value holds the separator, so text containing one matches nothing.
func (s *Store) FindByField(ctx context.Context, text string) ([]record.ID, error) {
	if strings.Contains(text, record.FieldSeparator) {
		return []record.ID{}, nil
	}
	needle := record.FieldSeparator + text + record.FieldSeparator
	return s.queryIDs(ctx, s.dialect.findByField, record.FieldSeparator, record.FieldSeparator, needle)
}

// RecordIDs returns the ids of every record of a type, in id order.
func (s *Store) RecordIDs(ctx context.Context, recordType string) ([]record.ID, error) {
	return s.queryIDs(ctx, s.dialect.listRecordIDs, recordType)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]record.ID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query record ids: %w", err)
	}
	defer rows.Close()

	ids := []record.ID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		ids = append(ids, record.ID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record ids: %w", err)
	}

	return ids, nil
}
