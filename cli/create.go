package cli

import (
	"fmt"

	actx "github.com/kasbahcode/devops-toolkit/app/context"
	aerrors "github.com/kasbahcode/devops-toolkit/app/errors"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

// The Create command writes a new migration file from the template. The file
// is never applied by this command; it starts out pending.
type Create struct {
	Name string `arg:"" help:"Descriptive name of the migration, e.g. 'add users table'."`
}

// Run the create command.
func (c *Create) Run(appCtx *actx.Context) error {
	repo := migrator.NewRepository(
		appCtx.FS, appCtx.Config.Migrations.Dir.V, appCtx.TimeNow)

	m, err := repo.Create(c.Name)
	if err != nil {
		return err
	}

	if _, err = fmt.Fprintf(appCtx.Stdout, "Created %s\n", m.SourcePath); err != nil {
		return aerrors.NewWithCause("failed writing to stdout", err)
	}

	return nil
}
