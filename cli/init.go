package cli

import (
	actx "github.com/kasbahcode/devops-toolkit/app/context"
)

// The Init command creates the migration ledger and lock tables. It is
// idempotent and safe to run repeatedly; every other command also performs
// this initialization on startup.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	_, ledger, err := newComponents(appCtx)
	if err != nil {
		return err
	}

	appCtx.Logger.Info("ledger initialized", "table", ledger.Table())

	return nil
}
