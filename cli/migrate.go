package cli

import (
	actx "github.com/kasbahcode/devops-toolkit/app/context"
	aerrors "github.com/kasbahcode/devops-toolkit/app/errors"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

// The Migrate command applies all pending migrations in ascending version
// order. Each migration runs in its own transaction; on failure the run halts
// and migrations applied earlier in the same run remain applied. There is no
// batch rollback.
type Migrate struct{}

// Run the migrate command.
func (c *Migrate) Run(appCtx *actx.Context) error {
	repo, ledger, err := newComponents(appCtx)
	if err != nil {
		return err
	}
	ctx := appCtx.DB.NewContext()

	lock := migrator.NewLock(appCtx.DB, ledger.Table())
	if err = lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(ctx); rerr != nil {
			appCtx.Logger.Error("failed releasing the migration lock", "error", rerr)
		}
	}()

	planner := migrator.NewPlanner(repo, ledger)
	pending, malformed, err := planner.Pending(ctx)
	if err != nil {
		return err
	}
	for _, perr := range malformed {
		appCtx.Logger.Warn("skipping malformed migration file", "error", perr)
	}

	if len(pending) == 0 {
		appCtx.Logger.Info("no pending migrations")
		return nil
	}

	executor := migrator.NewExecutor(appCtx.DB, ledger, appCtx.Logger)
	for _, m := range pending {
		if err = executor.Apply(ctx, m); err != nil {
			return aerrors.With(err, "version", m.Version)
		}
		appCtx.Logger.Info("applied migration", "version", m.Version)
	}

	appCtx.Logger.Info("migration run complete", "applied", len(pending))

	return nil
}
