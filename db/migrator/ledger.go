package migrator

import (
	"context"
	"fmt"
	"time"

	"github.com/kasbahcode/devops-toolkit/db/types"
)

// LedgerEntry is a record that a migration version was applied.
type LedgerEntry struct {
	Version   string
	AppliedAt time.Time
}

// Ledger is the single authoritative table recording which migration versions
// have been applied and when.
type Ledger struct {
	db    types.Querier
	table string
}

// NewLedger creates a ledger backed by the given table.
func NewLedger(d types.Querier, table string) *Ledger {
	return &Ledger{db: d, table: table}
}

// Table returns the name of the ledger table.
func (l *Ledger) Table() string {
	return l.table
}

// Init idempotently creates the ledger and lock tables if absent. It is safe
// to call repeatedly and on every command invocation.
func (l *Ledger) Init(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS "%s" (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`, l.table))
	if err != nil {
		return fmt.Errorf("failed creating ledger table %s: %w", l.table, err)
	}

	_, err = l.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS "%s" (
			id        INTEGER PRIMARY KEY CHECK (id = 1),
			owner     TEXT NOT NULL,
			locked_at TIMESTAMP NOT NULL
		)`, l.lockTable()))
	if err != nil {
		return fmt.Errorf("failed creating lock table %s: %w", l.lockTable(), err)
	}

	return nil
}

// AppliedVersions returns all recorded versions, ascending.
func (l *Ledger) AppliedVersions(ctx context.Context) ([]string, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}

	versions := make([]string, len(entries))
	for i, e := range entries {
		versions[i] = e.Version
	}

	return versions, nil
}

// Entries returns all ledger entries sorted ascending by version.
func (l *Ledger) Entries(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT version, applied_at FROM "%s" ORDER BY version ASC`, l.table))
	if err != nil {
		return nil, fmt.Errorf("failed querying ledger table %s: %w", l.table, err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err = rows.Scan(&e.Version, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed scanning ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating ledger entries: %w", err)
	}

	return entries, nil
}

// RecordApplied inserts a single ledger row for version. The Execer is either
// the main database handle, or the transaction wrapping the migration's own
// statements.
func (l *Ledger) RecordApplied(ctx context.Context, e types.Execer, version string) error {
	_, err := e.ExecContext(ctx,
		l.db.Rebind(fmt.Sprintf(
			`INSERT INTO "%s" (version, applied_at) VALUES (?, ?)`, l.table)),
		version, l.db.TimeNow().UTC())
	if err != nil {
		return fmt.Errorf("failed recording version %s in the ledger: %w", version, err)
	}

	return nil
}

// RemoveApplied deletes the ledger row for version.
func (l *Ledger) RemoveApplied(ctx context.Context, e types.Execer, version string) error {
	_, err := e.ExecContext(ctx,
		l.db.Rebind(fmt.Sprintf(`DELETE FROM "%s" WHERE version = ?`, l.table)),
		version)
	if err != nil {
		return fmt.Errorf("failed removing version %s from the ledger: %w", version, err)
	}

	return nil
}

func (l *Ledger) lockTable() string {
	return l.table + "_lock"
}
