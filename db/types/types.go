package types

import (
	"context"
	"database/sql"
	"time"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	NewContext() context.Context
	TimeNow() time.Time
	Rebind(query string) string
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer is the minimal statement execution interface, satisfied by both the
// main database handle and sql.Tx. It allows ledger mutations to run inside
// the same transaction as the migration statements they belong to.
type Execer interface {
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
}
