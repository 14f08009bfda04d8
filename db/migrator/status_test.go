package migrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	t.Parallel()

	t.Run("ok/applied_and_pending", func(t *testing.T) {
		t.Parallel()
		fs, repo := newTestRepo(t)
		d, ledger := newTestLedger(t)
		ctx := d.NewContext()

		// Three files, one applied.
		for _, v := range []string{"20250101000000_a", "20250102000000_b", "20250103000000_c"} {
			writeMigrationFile(t, fs, "/migrations", v,
				migrationContent("SELECT 1;", ""))
		}
		require.NoError(t, ledger.RecordApplied(ctx, d, "20250101000000_a"))

		st, err := Report(ctx, repo, ledger)
		require.NoError(t, err)

		require.Len(t, st.Applied, 1)
		assert.Equal(t, "20250101000000_a", st.Applied[0].Version)
		assert.True(t, st.Applied[0].AppliedAt.Equal(timeNow))
		assert.Equal(t, []string{"20250102000000_b", "20250103000000_c"}, st.Pending)
		assert.Empty(t, st.Missing)
		assert.Empty(t, st.Malformed)
	})

	t.Run("ok/consistency_fault_surfaced", func(t *testing.T) {
		t.Parallel()
		fs, repo := newTestRepo(t)
		d, ledger := newTestLedger(t)
		ctx := d.NewContext()

		writeMigrationFile(t, fs, "/migrations", "20250101000000_a",
			migrationContent("SELECT 1;", ""))
		require.NoError(t, ledger.RecordApplied(ctx, d, "20250101000000_a"))
		require.NoError(t, ledger.RecordApplied(ctx, d, "20250102000000_gone"))

		st, err := Report(ctx, repo, ledger)
		require.NoError(t, err)
		require.Len(t, st.Applied, 1)
		assert.Equal(t, []string{"20250102000000_gone"}, st.Missing)
	})

	t.Run("ok/malformed_reported", func(t *testing.T) {
		t.Parallel()
		fs, repo := newTestRepo(t)
		d, ledger := newTestLedger(t)

		writeMigrationFile(t, fs, "/migrations", "20250101000000_bad",
			"CREATE TABLE b (id INTEGER);\n")

		st, err := Report(d.NewContext(), repo, ledger)
		require.NoError(t, err)
		assert.Empty(t, st.Applied)
		assert.Empty(t, st.Pending)
		require.Len(t, st.Malformed, 1)
	})

	t.Run("ok/empty", func(t *testing.T) {
		t.Parallel()
		_, repo := newTestRepo(t)
		d, ledger := newTestLedger(t)

		st, err := Report(d.NewContext(), repo, ledger)
		require.NoError(t, err)
		assert.Empty(t, st.Applied)
		assert.Empty(t, st.Pending)
		assert.Empty(t, st.Missing)
	})
}
