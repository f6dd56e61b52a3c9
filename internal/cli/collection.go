package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/store"
)

// StoreOptions selects the record collection a command reads.
type StoreOptions struct {
	Database string // SQLite database path
	Postgres string // PostgreSQL DSN; takes precedence over Database
}

func (o *StoreOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite collection database")
	cmd.Flags().StringVar(&o.Postgres, "postgres", "", "PostgreSQL DSN of the collection (instead of --db)")
}

// open opens the configured collection. The SQLite file must already exist:
// operator commands never create an empty collection by accident.
func (o *StoreOptions) open(ctx context.Context) (*store.Store, error) {
	if o.Postgres != "" {
		st, err := store.OpenPostgres(ctx, o.Postgres)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open postgres collection", err)
		}
		return st, nil
	}

	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "one of --db or --postgres is required")
	}
	if _, err := os.Stat(o.Database); errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", o.Database))
	}

	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
