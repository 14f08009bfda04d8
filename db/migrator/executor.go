package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kasbahcode/devops-toolkit/db/types"
)

// TxBeginner is a Querier that can also start transactions.
type TxBeginner interface {
	types.Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Executor applies or reverts a migration's SQL body against a live
// connection, and updates the ledger in the same transaction. Migration
// bodies are operator-authored and executed verbatim; the ledger mutations
// themselves use native parameter binding.
type Executor struct {
	db     TxBeginner
	ledger *Ledger
	logger *slog.Logger
}

// NewExecutor creates an executor over the given connection and ledger.
func NewExecutor(d TxBeginner, ledger *Ledger, logger *slog.Logger) *Executor {
	return &Executor{db: d, ledger: ledger, logger: logger}
}

// Apply executes the migration's Up statements and records it in the ledger,
// all inside a single transaction. On statement failure it returns an
// ExecutionError identifying the failed statement; the caller must halt the
// remaining batch, and migrations applied earlier in the same run remain
// applied.
func (e *Executor) Apply(ctx context.Context, m *Migration) error {
	start := e.db.TimeNow()
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.UpBody {
			if _, serr := tx.ExecContext(ctx, stmt); serr != nil {
				return ExecutionError{Version: m.Version, Statement: stmt, Err: serr}
			}
		}
		return e.ledger.RecordApplied(ctx, tx, m.Version)
	})
	if err != nil {
		return err
	}

	e.logger.Debug("applied migration",
		"version", m.Version, "duration", e.db.TimeNow().Sub(start))

	return nil
}

// Revert executes the migration's Down statements and removes its ledger
// entry, all inside a single transaction. If the Down body is empty it fails
// with a NoDownSectionError and the ledger entry is NOT removed, which can
// leave the ledger out of sync with operator intent; callers must surface
// this as a warning rather than swallow it.
func (e *Executor) Revert(ctx context.Context, m *Migration) error {
	if !m.HasDown() {
		return NoDownSectionError{Version: m.Version}
	}

	start := e.db.TimeNow()
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.DownBody {
			if _, serr := tx.ExecContext(ctx, stmt); serr != nil {
				return ExecutionError{Version: m.Version, Statement: stmt, Err: serr}
			}
		}
		return e.ledger.RemoveApplied(ctx, tx, m.Version)
	})
	if err != nil {
		return err
	}

	e.logger.Debug("reverted migration",
		"version", m.Version, "duration", e.db.TimeNow().Sub(start))

	return nil
}

func (e *Executor) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return types.ConnectionError{Err: err}
	}

	if err = fn(tx); err != nil {
		//nolint:errcheck // The original error is more relevant.
		tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed committing migration transaction: %w", err)
	}

	return nil
}
