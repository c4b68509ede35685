// Package sqlite implements renderer.Dialect for SQLite.
package sqlite

import (
	"strings"

	"github.com/kodeflow/datamodel/renderer"
	"github.com/kodeflow/datamodel/sqlast"
)

// Dialect is the SQLite renderer.Dialect.
type Dialect struct{}

// New returns the SQLite dialect.
func New() *Dialect { return &Dialect{} }

var _ renderer.Dialect = (*Dialect)(nil)

func (*Dialect) Family() sqlast.SqlFamily { return sqlast.SQLite }

// QuoteIdent double-quotes an identifier, SQLite's preferred (ANSI) style.
func (*Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (*Dialect) ColumnType(c sqlast.Column) string {
	switch c.Type {
	case sqlast.TypeInt:
		return "INTEGER"
	case sqlast.TypeFloat:
		return "REAL"
	case sqlast.TypeBoolean:
		return "INTEGER"
	case sqlast.TypeDateTime:
		return "DATETIME"
	default: // TypeString, TypeEnum
		return "TEXT"
	}
}

// SupportsNativeEnum is false: SQLite has no enum type; enum columns are
// stored as TEXT and constrained only at the application layer.
func (*Dialect) SupportsNativeEnum() bool { return false }

func (*Dialect) AutoIncrementClause(c sqlast.Column) string {
	if c.Type == sqlast.TypeInt && c.Primary && c.AutoIncr {
		return "AUTOINCREMENT"
	}
	return ""
}

// Unsupported flags the patterns SQLite cannot express without the
// rebuild-into-a-new-table dance (CREATE new, copy, DROP old, RENAME) that
// this renderer does not perform: changing a column's declared type, and
// adding or dropping a foreign key constraint on an existing table when no
// column is added or dropped with it (a new column may carry its REFERENCES
// clause inline, and dropping the referencing column takes the constraint
// with it; only the constraint-only forms are rejected). An id type change
// cascading to its FKs is therefore a known-unsupported pattern here.
func (*Dialect) Unsupported(n sqlast.Node) error {
	switch node := n.(type) {
	case *sqlast.AlterTable:
		for _, op := range node.Operations {
			if _, ok := op.(sqlast.AlterColumnType); ok {
				return &renderer.ErrUnsupported{
					Family: sqlast.SQLite,
					Reason: "column type changes require a table rebuild, not a single ALTER COLUMN, on SQLite",
				}
			}
		}
	case *sqlast.AddForeignKey:
		if node.WithColumn == nil {
			return &renderer.ErrUnsupported{
				Family: sqlast.SQLite,
				Reason: "adding a foreign key constraint to an existing column requires a table rebuild on SQLite",
			}
		}
	case *sqlast.DropForeignKey:
		if node.DropsColumn == "" {
			return &renderer.ErrUnsupported{
				Family: sqlast.SQLite,
				Reason: "dropping a foreign key constraint without its column requires a table rebuild on SQLite",
			}
		}
	}
	return nil
}
