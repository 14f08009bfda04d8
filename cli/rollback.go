package cli

import (
	"errors"

	actx "github.com/kasbahcode/devops-toolkit/app/context"
	aerrors "github.com/kasbahcode/devops-toolkit/app/errors"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

// The Rollback command reverts the N most recently applied migrations, in
// descending version order. Migrations with an empty Down section are skipped
// with a warning and their ledger entries are kept; no silent auto-repair is
// performed.
type Rollback struct {
	Steps stepsField `arg:"" optional:"" default:"1" help:"Number of applied migrations to revert."`
}

// Run the rollback command.
func (c *Rollback) Run(appCtx *actx.Context) error {
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
	set, err := planner.RollbackSet(ctx, int(c.Steps))
	if err != nil {
		return err
	}

	if len(set) == 0 {
		appCtx.Logger.Info("no applied migrations to roll back")
		return nil
	}

	executor := migrator.NewExecutor(appCtx.DB, ledger, appCtx.Logger)
	var skipped []error
	reverted := 0
	for _, m := range set {
		err = executor.Revert(ctx, m)

		var ndErr migrator.NoDownSectionError
		switch {
		case errors.As(err, &ndErr):
			// The ledger entry is kept, leaving it out of sync with operator
			// intent until reconciled manually.
			appCtx.Logger.Warn("skipping migration with empty Down section",
				"version", m.Version)
			skipped = append(skipped, err)
		case err != nil:
			return aerrors.With(err, "version", m.Version)
		default:
			appCtx.Logger.Info("reverted migration", "version", m.Version)
			reverted++
		}
	}

	appCtx.Logger.Info("rollback run complete",
		"reverted", reverted, "skipped", len(skipped))

	if len(skipped) > 0 {
		return errors.Join(skipped...)
	}

	return nil
}

type stepsField int

func (s stepsField) Validate() error {
	if s <= 0 {
		return errors.New("must be greater than 0")
	}
	return nil
}
