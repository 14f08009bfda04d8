package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/lib/pq"

	"github.com/kasbahcode/devops-toolkit/db/types"
)

// Engine identifies a supported database engine.
type Engine string

// Supported database engines.
const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
)

// EngineFromString converts a string to an Engine value.
func EngineFromString(s string) (Engine, error) {
	switch Engine(strings.ToLower(s)) {
	case EngineSQLite:
		return EngineSQLite, nil
	case EnginePostgres:
		return EnginePostgres, nil
	}
	return "", fmt.Errorf("unsupported database engine: '%s'", s)
}

// DB wraps sql.DB with additional context and engine awareness.
type DB struct {
	*sql.DB
	ctx     context.Context
	engine  Engine
	timeNow func() time.Time
}

var _ types.Querier = (*DB)(nil)

// Open creates and configures a new database connection for the given engine,
// and verifies it with a ping. The dsn is an opaque engine-specific
// connection string.
func Open(ctx context.Context, engine Engine, dsn string, timeNow func() time.Time) (*DB, error) {
	var d *DB
	if engine == EngineSQLite &&
		(strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:")) {
		defer func() {
			if d != nil {
				// See https://github.com/mattn/go-sqlite3#faq
				d.SetMaxIdleConns(10)
				d.SetConnMaxLifetime(time.Duration(math.Inf(1)))
			}
		}()
	}

	sqlDB, err := sql.Open(string(engine), dsn)
	if err != nil {
		return nil, types.ConnectionError{Err: err}
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, types.ConnectionError{Err: err}
	}

	d = &DB{DB: sqlDB, ctx: ctx, engine: engine, timeNow: timeNow}

	if engine == EngineSQLite {
		// Enable foreign key enforcement
		_, err = d.Exec(`PRAGMA foreign_keys = ON;`)
		if err != nil {
			return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
		}
	}

	return d, nil
}

// Engine returns the database engine of this connection.
func (d *DB) Engine() Engine {
	return d.engine
}

// NewContext returns a new child context of the main database context.
func (d *DB) NewContext() context.Context {
	// TODO: Return cancel func?
	ctx, _ := context.WithCancel(d.ctx) //nolint:govet // I'll handle this later...
	return ctx
}

// Rebind converts '?' placeholders in the query to the bindvar format of the
// current engine. SQLite accepts '?' natively; PostgreSQL requires $1..$n.
func (d *DB) Rebind(query string) string {
	if d.engine != EnginePostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
