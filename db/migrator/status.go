package migrator

import (
	"context"
	"slices"
)

// Status is a read-only projection combining repository and ledger state. It
// performs no mutation and is safe to compute at any time.
type Status struct {
	// Applied are the ledger entries whose versions have a backing file,
	// ascending.
	Applied []LedgerEntry
	// Pending are the repository versions absent from the ledger, ascending.
	Pending []string
	// Missing are ledger versions with no backing file in the repository.
	// Each one is a consistency fault that must be surfaced prominently.
	Missing []string
	// Malformed are repository files that failed to parse.
	Malformed []ParseError
}

// Report computes the migration status from the given repository and ledger.
func Report(ctx context.Context, repo *Repository, ledger *Ledger) (*Status, error) {
	migrations, malformed, err := repo.List()
	if err != nil {
		return nil, err
	}

	entries, err := ledger.Entries(ctx)
	if err != nil {
		return nil, err
	}

	known := make([]string, len(migrations))
	for i, m := range migrations {
		known[i] = m.Version
	}

	st := &Status{Malformed: malformed}
	applied := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		applied[e.Version] = struct{}{}
		if slices.Contains(known, e.Version) {
			st.Applied = append(st.Applied, e)
		} else {
			st.Missing = append(st.Missing, e.Version)
		}
	}

	for _, v := range known {
		if _, ok := applied[v]; !ok {
			st.Pending = append(st.Pending, v)
		}
	}

	return st, nil
}
