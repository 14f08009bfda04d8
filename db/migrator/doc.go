// Package migrator provides functionality to manage database schema migrations.
//
// Features:
// - Supports both forward (`up`) and rollback (`down`) migrations
// - Loads SQL migration files with structured naming (`{timestamp}_{name}.sql`)
//   from any vfs.FileSystem, with Up/Down sections delimited by marker lines
// - Tracks applied versions in a dedicated ledger table, which is the single
//   source of truth for "applied" state
// - Computes pending and rollback work lists with deterministic ordering
// - Serializes concurrent runs with an advisory lock table
package migrator
