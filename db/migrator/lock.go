package migrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nrednav/cuid2"

	"github.com/kasbahcode/devops-toolkit/db/types"
)

// Lock is an advisory lock serializing concurrent migration runs. It is
// implemented as a dedicated single-row table, so it behaves identically on
// every supported engine. Two simultaneous runs would otherwise observe the
// same pending set and attempt to apply the same migration twice.
type Lock struct {
	db    types.Querier
	table string
	owner string
}

// NewLock creates an advisory lock on the given lock table. Each Lock value
// gets a unique owner token.
func NewLock(d types.Querier, ledgerTable string) *Lock {
	return &Lock{db: d, table: ledgerTable + "_lock", owner: cuid2.Generate()}
}

// Acquire takes the advisory lock. It fails with a LockError naming the
// current holder if the lock is already taken.
func (l *Lock) Acquire(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx,
		l.db.Rebind(fmt.Sprintf(
			`INSERT INTO "%s" (id, owner, locked_at) VALUES (1, ?, ?)`, l.table)),
		l.owner, l.db.TimeNow().UTC())
	if err == nil {
		return nil
	}
	if !types.IsUniqueViolation(err) {
		return fmt.Errorf("failed acquiring the migration lock: %w", err)
	}

	var (
		holder string
		since  time.Time
	)
	qerr := l.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT owner, locked_at FROM "%s" WHERE id = 1`, l.table)).
		Scan(&holder, &since)
	if qerr != nil {
		// The holder may have released the lock between the failed insert and
		// this query; report the contention regardless.
		return LockError{Holder: "unknown"}
	}

	return LockError{Holder: holder, Since: since}
}

// Release drops the advisory lock, but only if this Lock value still holds it.
func (l *Lock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx,
		l.db.Rebind(fmt.Sprintf(`DELETE FROM "%s" WHERE id = 1 AND owner = ?`, l.table)),
		l.owner)
	if err != nil {
		return fmt.Errorf("failed releasing the migration lock: %w", err)
	}

	return nil
}
