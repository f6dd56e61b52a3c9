package record

import (
	"errors"
	"fmt"
	"strings"
)

// FieldSeparator delimits field values in a record's flattened form.
// Lookups match a search text only when it sits between two separators.
const FieldSeparator = "\x1f"

// ErrSeparatorInValue is returned when a field value contains FieldSeparator.
// Such a value could not be told apart from two fields once flattened.
var ErrSeparatorInValue = errors.New("field value contains the field separator")

// ID identifies a record within a collection.
type ID int64

// String renders the id in decimal.
func (id ID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Record is one card's field set tagged with its record type.
//
// Fields are addressed by name; the set of valid names is fixed by the
// record type's schema at construction. Set on an unknown field is an error,
// never a silent insert.
type Record struct {
	ID   ID     `json:"id"`
	Type string `json:"type"`

	names   []string
	values  map[string]string
	changed bool
}

// New creates a record whose schema is names, in order.
// Values for names not present in values start empty; values for names not in
// the schema, or holding FieldSeparator, are rejected.
func New(id ID, recordType string, names []string, values map[string]string) (*Record, error) {
	r := &Record{
		ID:     id,
		Type:   recordType,
		names:  make([]string, len(names)),
		values: make(map[string]string, len(names)),
	}
	copy(r.names, names)

	for _, name := range names {
		if _, dup := r.values[name]; dup {
			return nil, fmt.Errorf("record %s: duplicate field %q in schema", id, name)
		}
		r.values[name] = ""
	}
	for name, value := range values {
		if _, ok := r.values[name]; !ok {
			return nil, fmt.Errorf("record %s: field %q not in schema of %q", id, name, recordType)
		}
		if strings.Contains(value, FieldSeparator) {
			return nil, fmt.Errorf("record %s: field %q: %w", id, name, ErrSeparatorInValue)
		}
		r.values[name] = value
	}

	return r, nil
}

// FromFlat rebuilds a record from its flattened field column.
// The number of values must equal the number of schema names.
func FromFlat(id ID, recordType string, names []string, flat string) (*Record, error) {
	values := SplitFields(flat)
	if len(values) != len(names) {
		return nil, fmt.Errorf("record %s: %d stored values for %d schema fields", id, len(values), len(names))
	}
	m := make(map[string]string, len(names))
	for i, name := range names {
		m[name] = values[i]
	}
	return New(id, recordType, names, m)
}

// HasField reports whether name is part of the record's schema.
func (r *Record) HasField(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the raw value of a field and whether the field exists.
func (r *Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set replaces the value of an existing field and marks the record changed
// when the value differs.
func (r *Record) Set(name, value string) error {
	old, ok := r.values[name]
	if !ok {
		return fmt.Errorf("record %s: field %q not in schema of %q", r.ID, name, r.Type)
	}
	if strings.Contains(value, FieldSeparator) {
		return fmt.Errorf("record %s: field %q: %w", r.ID, name, ErrSeparatorInValue)
	}
	if old != value {
		r.values[name] = value
		r.changed = true
	}
	return nil
}

// FieldNames returns the schema field names in order.
func (r *Record) FieldNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// FieldName returns the name of the field at index i, or false if i is out of range.
func (r *Record) FieldName(i int) (string, bool) {
	if i < 0 || i >= len(r.names) {
		return "", false
	}
	return r.names[i], true
}

// Values returns a copy of the field values keyed by name.
func (r *Record) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Changed reports whether any Set call modified the record since creation
// or the last MarkClean.
func (r *Record) Changed() bool {
	return r.changed
}

// MarkClean clears the changed flag, typically after a successful persist.
func (r *Record) MarkClean() {
	r.changed = false
}

// Flatten joins the field values in schema order with FieldSeparator.
func (r *Record) Flatten() string {
	vals := make([]string, len(r.names))
	for i, name := range r.names {
		vals[i] = r.values[name]
	}
	return JoinFields(vals)
}

// Clone returns a deep copy of the record, including the changed flag.
func (r *Record) Clone() *Record {
	c := &Record{
		ID:      r.ID,
		Type:    r.Type,
		names:   r.FieldNames(),
		values:  r.Values(),
		changed: r.changed,
	}
	return c
}

// JoinFields joins values with FieldSeparator.
func JoinFields(values []string) string {
	return strings.Join(values, FieldSeparator)
}

// SplitFields is the inverse of JoinFields.
func SplitFields(flat string) []string {
	return strings.Split(flat, FieldSeparator)
}
