// Package executor applies a rendered migration (an ordered list of DDL
// statements) to a live database. It is the one adapter in this module that
// performs I/O; everything upstream of it (validator, converter, inferrer,
// renderer) is pure and synchronous, and hands this package a plain
// []string to run.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kodeflow/datamodel/sqlast"
)

// migrationsTableSQL creates the bookkeeping table recording which named
// migrations have already been applied, so a re-run against the same
// database is a no-op rather than a re-execution.
const migrationsTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`

// Executor applies DDL statement lists inside a transaction and records
// each successfully applied migration's version, so the caller can ask
// whether a given version has already run.
type Executor struct {
	db     *sql.DB
	family sqlast.SqlFamily
	logger *slog.Logger
}

// New wraps db, targeting family. The caller owns db's lifecycle (driver
// selection, connection pooling); Executor only ever runs DDL against it.
// family only affects the placeholder syntax of Executor's own bookkeeping
// queries (Postgres binds positionally as $1, MySQL/SQLite as ?); the DDL
// statements passed to Apply are already fully rendered by the caller and
// never parameterized.
func New(db *sql.DB, family sqlast.SqlFamily) *Executor {
	return &Executor{db: db, family: family, logger: slog.Default()}
}

func (e *Executor) placeholder(n int) string {
	if e.family == sqlast.Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// WithLogger returns a copy of e logging through l instead of the default
// logger.
func (e *Executor) WithLogger(l *slog.Logger) *Executor {
	tmp := *e
	tmp.logger = l
	return &tmp
}

// Initialize creates the schema_migrations bookkeeping table if absent.
// Safe to call repeatedly.
func (e *Executor) Initialize(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, migrationsTableSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Applied reports whether a migration named version has already run.
func (e *Executor) Applied(ctx context.Context, version string) (bool, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM schema_migrations WHERE version = %s`, e.placeholder(1))
	err := e.db.QueryRowContext(ctx, query, version).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return n > 0, nil
}

// Apply runs every statement in order inside a single transaction, then
// records version in schema_migrations. If any statement fails the whole
// migration rolls back and the offending statement is named in the
// returned error; no partial DDL is left applied.
//
// Apply does not call Initialize; callers that haven't already done so at
// startup should call it once before the first Apply.
func (e *Executor) Apply(ctx context.Context, version string, statements []string) error {
	if already, err := e.Applied(ctx, version); err != nil {
		return err
	} else if already {
		e.logger.InfoContext(ctx, "migration already applied, skipping", "version", version)
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // only reached on an early return; commit supersedes it

	for i, stmt := range statements {
		e.logger.DebugContext(ctx, "executing statement", "version", version, "index", i, "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d of migration %s failed: %w\n%s", i, version, err, stmt)
		}
	}

	insert := fmt.Sprintf(`INSERT INTO schema_migrations (version, applied_at) VALUES (%s, CURRENT_TIMESTAMP)`, e.placeholder(1))
	if _, err := tx.ExecContext(ctx, insert, version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", version, err)
	}
	e.logger.InfoContext(ctx, "migration applied", "version", version, "statements", len(statements))
	return nil
}

// DryRun renders what Apply would execute without touching the database,
// for CLI --dry-run style callers.
func (e *Executor) DryRun(statements []string) string {
	out := ""
	for _, s := range statements {
		out += s + ";\n"
	}
	return out
}
