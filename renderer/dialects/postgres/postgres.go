// Package postgres implements renderer.Dialect for PostgreSQL.
package postgres

import (
	"strings"

	"github.com/kodeflow/datamodel/renderer"
	"github.com/kodeflow/datamodel/sqlast"
)

// Dialect is the PostgreSQL renderer.Dialect.
type Dialect struct{}

// New returns the PostgreSQL dialect.
func New() *Dialect { return &Dialect{} }

var _ renderer.Dialect = (*Dialect)(nil)

func (*Dialect) Family() sqlast.SqlFamily { return sqlast.Postgres }

// QuoteIdent double-quotes an identifier, escaping any embedded quote, so
// reserved words and mixed-case names (e.g. model "Group") round-trip.
func (*Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Dialect) ColumnType(c sqlast.Column) string {
	switch c.Type {
	case sqlast.TypeInt:
		return "INTEGER"
	case sqlast.TypeFloat:
		return "DOUBLE PRECISION"
	case sqlast.TypeBoolean:
		return "BOOLEAN"
	case sqlast.TypeDateTime:
		return "TIMESTAMP"
	case sqlast.TypeEnum:
		return d.QuoteIdent(c.EnumName)
	default: // TypeString
		return "TEXT"
	}
}

func (*Dialect) SupportsNativeEnum() bool { return true }

func (*Dialect) AutoIncrementClause(c sqlast.Column) string {
	if c.Type == sqlast.TypeInt && c.Primary && c.AutoIncr {
		return "GENERATED BY DEFAULT AS IDENTITY"
	}
	return ""
}

// Unsupported: Postgres has no dialect-specific restriction among the
// patterns this renderer emits.
func (*Dialect) Unsupported(sqlast.Node) error { return nil }
