package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/fieldsync/internal/record"
)

// AddModel registers a record type with its ordered field names.
// Re-registering the same schema is a no-op; a different schema under an
// existing name is an error, since stored records depend on field order.
func (s *Store) AddModel(ctx context.Context, name string, fields []string) error {
	fieldsJSON, err := marshalFieldNames(fields)
	if err != nil {
		return fmt.Errorf("add model %q: %w", name, err)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.insertModel, name, fieldsJSON); err != nil {
		return fmt.Errorf("add model %q: %w", name, err)
	}

	existing, err := s.FieldNames(ctx, name)
	if err != nil {
		return fmt.Errorf("add model %q: %w", name, err)
	}
	if !slices.Equal(existing, fields) {
		return fmt.Errorf("add model %q: already registered with fields %v", name, existing)
	}

	return nil
}

// AddRecord inserts a record of the given type and returns its id.
// Fields absent from values are stored empty.
func (s *Store) AddRecord(ctx context.Context, recordType string, values map[string]string) (record.ID, error) {
	names, err := s.FieldNames(ctx, recordType)
	if err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	r, err := record.New(0, recordType, names, values)
	if err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.insertRecord, recordType, r.Flatten()).Scan(&id); err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	return record.ID(id), nil
}

// Persist writes the record's field values back and bumps its modification
// counter. The record is marked clean on success.
func (s *Store) Persist(ctx context.Context, r *record.Record) error {
	res, err := s.db.ExecContext(ctx, s.dialect.updateRecord, r.Flatten(), int64(r.ID), r.Type)
	if err != nil {
		return fmt.Errorf("persist record %s: %w", r.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("persist record %s: %w", r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("persist record %s of type %q: %w", r.ID, r.Type, record.ErrNotFound)
	}

	r.MarkClean()
	return nil
}
