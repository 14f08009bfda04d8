package migrator

import (
	"fmt"
	"time"
)

// NameError indicates an invalid migration name passed to Repository.Create.
type NameError struct {
	Name string
	Msg  string
}

// Error returns a string representation of the error.
func (e NameError) Error() string {
	return fmt.Sprintf("invalid migration name '%s': %s", e.Name, e.Msg)
}

// ExitCode returns the process exit code associated with this error kind.
func (e NameError) ExitCode() int { return 4 }

// CollisionError indicates that a migration file with the same version
// already exists. This can happen when two migrations are created within the
// same second; the caller should retry after a tick.
type CollisionError struct {
	Version string
	Path    string
}

// Error returns a string representation of the error.
func (e CollisionError) Error() string {
	return fmt.Sprintf(
		"migration version %s already exists at %s; retry in a second", e.Version, e.Path)
}

// ExitCode returns the process exit code associated with this error kind.
func (e CollisionError) ExitCode() int { return 5 }

// ParseError indicates a malformed migration file. The file is excluded from
// automatic processing, but must be reported to the operator.
type ParseError struct {
	Path string
	Msg  string
}

// Error returns a string representation of the error.
func (e ParseError) Error() string {
	return fmt.Sprintf("failed parsing migration file %s: %s", e.Path, e.Msg)
}

// ExitCode returns the process exit code associated with this error kind.
func (e ParseError) ExitCode() int { return 6 }

// ExecutionError indicates that a SQL statement failed during apply or
// revert. It halts the remaining work in the batch; already-completed
// migrations are NOT undone.
type ExecutionError struct {
	Version   string
	Statement string
	Err       error
}

// Error returns a string representation of the error.
func (e ExecutionError) Error() string {
	return fmt.Sprintf("failed executing migration %s: %s (statement: %s)",
		e.Version, e.Err, e.Statement)
}

// Unwrap returns the underlying error for error unwrapping.
func (e ExecutionError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code associated with this error kind.
func (e ExecutionError) ExitCode() int { return 7 }

// NoDownSectionError indicates a revert was attempted for a migration with an
// empty Down section. The migration is skipped and its ledger entry is kept,
// leaving the ledger out of sync with operator intent. No silent auto-repair
// is performed; the condition must be surfaced loudly.
type NoDownSectionError struct {
	Version string
}

// Error returns a string representation of the error.
func (e NoDownSectionError) Error() string {
	return fmt.Sprintf(
		"migration %s has an empty Down section; its ledger entry was kept", e.Version)
}

// ExitCode returns the process exit code associated with this error kind.
func (e NoDownSectionError) ExitCode() int { return 8 }

// ConsistencyError indicates that the ledger references a version with no
// backing file in the repository.
type ConsistencyError struct {
	Versions []string
}

// Error returns a string representation of the error.
func (e ConsistencyError) Error() string {
	return fmt.Sprintf(
		"ledger references versions missing from the repository: %v", e.Versions)
}

// ExitCode returns the process exit code associated with this error kind.
func (e ConsistencyError) ExitCode() int { return 9 }

// LockError indicates that the advisory lock is held by another migration
// run.
type LockError struct {
	Holder string
	Since  time.Time
}

// Error returns a string representation of the error.
func (e LockError) Error() string {
	return fmt.Sprintf("another migration run (%s) holds the lock since %s",
		e.Holder, e.Since.Format(time.RFC3339))
}

// ExitCode returns the process exit code associated with this error kind.
func (e LockError) ExitCode() int { return 10 }
