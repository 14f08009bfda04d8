package app

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/require"

	actx "github.com/kasbahcode/devops-toolkit/app/context"
	"github.com/kasbahcode/devops-toolkit/db"
	"github.com/kasbahcode/devops-toolkit/db/migrator"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	stdout, stderr *bytes.Buffer
	env            *mockEnv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// A unique name per app, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(t.Context(), db.EngineSQLite,
		fmt.Sprintf("file:dbmigrate-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	var stdout, stderr bytes.Buffer
	env := &mockEnv{env: map[string]string{}}
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithEnv(env),
		WithDB(d),
		WithContext(t.Context()),
		WithFDs(strings.NewReader(""), &stdout, &stderr),
		WithFS(memoryfs.New()),
		WithLogger(false, false),
	}
	app, err := New("dbmigrate", "/config.json", "/data", opts...)
	require.NoError(t, err)

	return &testApp{App: app, stdout: &stdout, stderr: &stderr, env: env}
}

// Run executes a command and returns its stdout and stderr output.
func (ta *testApp) Run(args ...string) (stdout, stderr string, err error) {
	err = ta.App.Run(args)
	stdout = ta.stdout.String()
	stderr = ta.stderr.String()
	ta.stdout.Reset()
	ta.stderr.Reset()

	return stdout, stderr, err
}

func appliedVersions(t *testing.T, ta *testApp) []string {
	t.Helper()

	ledger := migrator.NewLedger(ta.ctx.DB, "schema_migrations")
	versions, err := ledger.AppliedVersions(ta.ctx.DB.NewContext())
	require.NoError(t, err)

	return versions
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}
