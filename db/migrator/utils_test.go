package migrator

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	"github.com/kasbahcode/devops-toolkit/db"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(t.Context(), db.EngineSQLite,
		fmt.Sprintf("file:migrator-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func newTestLedger(t *testing.T) (*db.DB, *Ledger) {
	t.Helper()

	d := newTestDB(t)
	ledger := NewLedger(d, "schema_migrations")
	require.NoError(t, ledger.Init(d.NewContext()))

	return d, ledger
}

func newTestRepo(t *testing.T) (vfs.FileSystem, *Repository) {
	t.Helper()

	fs := memoryfs.New()
	return fs, NewRepository(fs, "/migrations", timeNowFn)
}

func writeMigrationFile(t *testing.T, fs vfs.FileSystem, dir, version, content string) {
	t.Helper()

	require.NoError(t, fs.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, version+".sql")
	require.NoError(t, vfs.WriteFile(fs, path, []byte(content), 0o644))
}

func migrationContent(up, down string) string {
	return fmt.Sprintf("%s\n%s\n%s\n%s\n", MarkerUp, up, MarkerDown, down)
}
