// Package renderer turns a dialect-neutral sqlast.Node sequence into
// dialect-specific DDL text. The heavy lifting (statement shape, operation
// ordering) lives here; each dialects/ subpackage only supplies identifier
// quoting, column-type mapping, and the handful of places its dialect
// genuinely diverges.
package renderer

import (
	"fmt"

	"github.com/kodeflow/datamodel/sqlast"
)

// Dialect supplies everything that varies between Postgres, MySQL, and
// SQLite when turning a sqlast.Node into text. A Renderer holds one Dialect
// and consults its Family only for the few statement forms that differ by
// dialect (table rename, column retype, index drop, foreign key add/drop).
type Dialect interface {
	Family() sqlast.SqlFamily

	// QuoteIdent quotes a table, column, or constraint name per the
	// dialect's identifier-quoting rule.
	QuoteIdent(name string) string

	// ColumnType maps a dialect-neutral column to its physical type
	// keyword, e.g. TypeString -> "TEXT"/"VARCHAR(191)"/"TEXT".
	ColumnType(c sqlast.Column) string

	// SupportsNativeEnum reports whether CREATE TYPE ... AS ENUM (or
	// equivalent) is available; dialects without one render enum columns
	// as their string type instead and ignore CreateEnum/DropEnum.
	SupportsNativeEnum() bool

	// AutoIncrementClause returns the column-level clause that makes an
	// Int id column self-incrementing (e.g. "GENERATED BY DEFAULT AS
	// IDENTITY", "AUTO_INCREMENT", "AUTOINCREMENT"), or "" if the column
	// isn't one.
	AutoIncrementClause(c sqlast.Column) string

	// Unsupported reports a dialect-specific restriction on a node that
	// the renderer otherwise knows how to emit, letting a caller skip a
	// scenario known not to work on this dialect instead of producing
	// DDL that would fail against a real server.
	Unsupported(n sqlast.Node) error
}

// ErrUnsupported is returned by Dialect.Unsupported to flag a pattern this
// dialect cannot express; Render stops at the offending node rather than
// emitting broken DDL.
type ErrUnsupported struct {
	Family sqlast.SqlFamily
	Reason string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("%s: unsupported: %s", e.Family, e.Reason)
}
