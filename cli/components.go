package cli

import (
	actx "github.com/kasbahcode/devops-toolkit/app/context"
	aerrors "github.com/kasbahcode/devops-toolkit/app/errors"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

// newComponents constructs the migration repository and ledger from the
// application context, and idempotently initializes the ledger tables. Every
// database-touching command starts here.
func newComponents(appCtx *actx.Context) (*migrator.Repository, *migrator.Ledger, error) {
	repo := migrator.NewRepository(
		appCtx.FS, appCtx.Config.Migrations.Dir.V, appCtx.TimeNow)
	ledger := migrator.NewLedger(appCtx.DB, appCtx.Config.Migrations.Table.V)

	if err := ledger.Init(appCtx.DB.NewContext()); err != nil {
		return nil, nil, aerrors.NewWithCause("failed initializing the ledger", err,
			"table", ledger.Table())
	}

	return repo, ledger, nil
}
