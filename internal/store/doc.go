// Package store provides SQL-backed collection storage for fieldsync.
//
// The store implements record.Collection over two tables:
//   - models: record types and their ordered field names (JSON array)
//   - records: one row per record, field values joined by record.FieldSeparator
//
// # Lookup
//
// FindByField matches a text only as a complete field value: the query wraps
// the joined column in separators and searches for separator+text+separator.
// Matching is exact (no LIKE case folding, no wildcards). Results are ordered
// by id, the collection's natural insertion order.
//
// # Modification counter
//
// Persist bumps records.mod, a per-record logical counter. Wall-clock time is
// never stored.
//
// # Dialects
//
//   - Open: SQLite through mattn/go-sqlite3 (WAL, synchronous=NORMAL,
//     busy_timeout=5000, foreign_keys=ON, user_version migrations)
//   - OpenPostgres: Postgres through the pgx stdlib driver
package store
