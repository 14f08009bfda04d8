package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		exp    Engine
		expErr bool
	}{
		{in: "sqlite", exp: EngineSQLite},
		{in: "SQLite", exp: EngineSQLite},
		{in: "postgres", exp: EnginePostgres},
		{in: "POSTGRES", exp: EnginePostgres},
		{in: "mysql", expErr: true},
		{in: "", expErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			engine, err := EngineFromString(tt.in)
			if tt.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, engine)
		})
	}
}

func TestRebind(t *testing.T) {
	t.Parallel()

	sqliteDB := &DB{engine: EngineSQLite}
	pgDB := &DB{engine: EnginePostgres}

	q := `INSERT INTO "schema_migrations" (version, applied_at) VALUES (?, ?)`
	assert.Equal(t, q, sqliteDB.Rebind(q))
	assert.Equal(t,
		`INSERT INTO "schema_migrations" (version, applied_at) VALUES ($1, $2)`,
		pgDB.Rebind(q))

	assert.Equal(t, `SELECT 1`, pgDB.Rebind(`SELECT 1`))
}

func TestOpenSQLiteMemory(t *testing.T) {
	t.Parallel()

	timeNow := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d, err := Open(t.Context(), EngineSQLite,
		"file:dbtest?mode=memory&cache=shared", func() time.Time { return timeNow })
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	assert.Equal(t, EngineSQLite, d.Engine())
	assert.True(t, d.TimeNow().Equal(timeNow))

	_, err = d.ExecContext(d.NewContext(), `CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
}
