package cli

import (
	"fmt"
	"time"

	actx "github.com/kasbahcode/devops-toolkit/app/context"
	aerrors "github.com/kasbahcode/devops-toolkit/app/errors"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

// The Status command shows which migrations are applied, pending, or in a
// faulty state. It is a pure read and is safe to run at any time, including
// concurrently with other operations.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	repo, ledger, err := newComponents(appCtx)
	if err != nil {
		return err
	}

	st, err := migrator.Report(appCtx.DB.NewContext(), repo, ledger)
	if err != nil {
		return err
	}

	for _, version := range st.Missing {
		// Consistency fault: the ledger is the source of truth for "applied"
		// state, but the backing file is gone.
		appCtx.Logger.Warn(
			"ledger references a version missing from the repository",
			"version", version)
	}
	for _, perr := range st.Malformed {
		appCtx.Logger.Warn("malformed migration file", "error", perr)
	}

	data := make([][]string, 0, len(st.Applied)+len(st.Pending)+len(st.Missing))
	for _, e := range st.Applied {
		data = append(data, []string{
			e.Version, "applied", e.AppliedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, version := range st.Pending {
		data = append(data, []string{version, "pending", ""})
	}
	for _, version := range st.Missing {
		data = append(data, []string{version, "missing", ""})
	}
	for _, perr := range st.Malformed {
		data = append(data, []string{perr.Path, "malformed", ""})
	}

	if len(data) == 0 {
		if _, err = fmt.Fprintln(appCtx.Stdout, "No migrations found."); err != nil {
			return aerrors.NewWithCause("failed writing to stdout", err)
		}
		return nil
	}

	header := []string{"Version", "Status", "Applied At"}
	if err = renderTable(header, data, appCtx.Stdout); err != nil {
		return aerrors.NewWithCause("failed rendering the status table", err)
	}

	return nil
}
