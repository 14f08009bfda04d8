package types

import (
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	"github.com/lib/pq"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConnectionError indicates that the database is unreachable. It is fatal to
// the entire command invocation.
type ConnectionError struct {
	Err error
}

// Error returns a string representation of the error.
func (e ConnectionError) Error() string {
	return fmt.Sprintf("failed connecting to the database: %s", e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e ConnectionError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code associated with this error kind.
func (e ConnectionError) ExitCode() int { return 3 }

// IsUniqueViolation reports whether err was caused by a unique or primary key
// constraint violation, for any of the supported database engines.
func IsUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}

	return false
}
