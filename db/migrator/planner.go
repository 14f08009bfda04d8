package migrator

import (
	"context"
	"slices"
)

// Planner computes the pending and rollback work lists from the repository
// and ledger state.
type Planner struct {
	repo   *Repository
	ledger *Ledger
}

// NewPlanner creates a planner over the given repository and ledger.
func NewPlanner(repo *Repository, ledger *Ledger) *Planner {
	return &Planner{repo: repo, ledger: ledger}
}

// Pending returns the migrations present in the repository but absent from
// the ledger, sorted ascending by version, along with any malformed files
// that were excluded. A new migration file dated earlier than an already
// applied one is accepted, and will be applied out of order.
func (p *Planner) Pending(ctx context.Context) ([]*Migration, []ParseError, error) {
	migrations, malformed, err := p.repo.List()
	if err != nil {
		return nil, nil, err
	}

	applied, err := p.ledger.AppliedVersions(ctx)
	if err != nil {
		return nil, nil, err
	}

	pending := make([]*Migration, 0, len(migrations))
	for _, m := range migrations {
		if !slices.Contains(applied, m.Version) {
			pending = append(pending, m)
		}
	}

	return pending, malformed, nil
}

// RollbackSet returns the last n applied migrations in descending order, most
// recently applied first. If n exceeds the ledger size, the entire ledger is
// returned. An applied version with no backing file cannot be reverted, and
// fails with a ConsistencyError.
func (p *Planner) RollbackSet(ctx context.Context, n int) ([]*Migration, error) {
	applied, err := p.ledger.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	if n > len(applied) {
		n = len(applied)
	}
	slices.Reverse(applied)
	applied = applied[:n]

	var missing []string
	set := make([]*Migration, 0, len(applied))
	for _, version := range applied {
		m, err := p.repo.Get(version)
		if err != nil {
			return nil, err
		}
		if m == nil {
			missing = append(missing, version)
			continue
		}
		set = append(set, m)
	}
	if len(missing) > 0 {
		return nil, ConsistencyError{Versions: missing}
	}

	return set, nil
}
