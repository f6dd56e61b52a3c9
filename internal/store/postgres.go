package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

//go:embed schema_postgres.sql
var schemaPostgresSQL string

// DefaultPostgresDSN is used by OpenPostgres when dsn is empty.
const DefaultPostgresDSN = "postgres://localhost/fieldsync?sslmode=disable"

var postgresDialect = dialect{
	name:         "pgx",
	insertModel:  `INSERT INTO models (name, fields) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
	selectModel:  `SELECT fields FROM models WHERE name = $1`,
	insertRecord: `INSERT INTO records (model, flds) VALUES ($1, $2) RETURNING id`,
	selectRecord: `
		SELECT r.model, r.flds, m.fields
		FROM records r
		JOIN models m ON m.name = r.model
		WHERE r.id = $1`,
	findByField: `
		SELECT id FROM records
		WHERE strpos($1::text || flds || $2::text, $3::text) > 0
		ORDER BY id ASC`,
	updateRecord:  `UPDATE records SET flds = $1, mod = mod + 1 WHERE id = $2 AND model = $3`,
	listRecordIDs: `SELECT id FROM records WHERE model = $1 ORDER BY id ASC`,
}

// OpenPostgres connects to a Postgres collection and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultPostgresDSN
	}
	db, err := sql.Open(postgresDialect.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaPostgresSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &Store{db: db, dialect: postgresDialect}, nil
}
