// Package mysql implements renderer.Dialect for MySQL.
package mysql

import (
	"strings"

	"github.com/kodeflow/datamodel/renderer"
	"github.com/kodeflow/datamodel/sqlast"
)

// Dialect is the MySQL renderer.Dialect.
type Dialect struct{}

// New returns the MySQL dialect.
func New() *Dialect { return &Dialect{} }

var _ renderer.Dialect = (*Dialect)(nil)

func (*Dialect) Family() sqlast.SqlFamily { return sqlast.MySQL }

// QuoteIdent backtick-quotes an identifier, MySQL's quoting style.
func (*Dialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *Dialect) ColumnType(c sqlast.Column) string {
	switch c.Type {
	case sqlast.TypeInt:
		return "INT"
	case sqlast.TypeFloat:
		return "DOUBLE"
	case sqlast.TypeBoolean:
		return "TINYINT(1)"
	case sqlast.TypeDateTime:
		return "DATETIME"
	case sqlast.TypeEnum:
		// MySQL has no separate enum-type catalog; an enum column is
		// rendered with the string type, and its values are not
		// constrained by the column definition.
		return "VARCHAR(191)"
	default: // TypeString
		return "VARCHAR(191)"
	}
}

// SupportsNativeEnum is false: no standalone named enum type is declared and
// enum columns use the string type, so the renderer skips CreateEnum/DropEnum
// steps for this dialect.
func (*Dialect) SupportsNativeEnum() bool { return false }

func (*Dialect) AutoIncrementClause(c sqlast.Column) string {
	if c.Type == sqlast.TypeInt && c.Primary && c.AutoIncr {
		return "AUTO_INCREMENT"
	}
	return ""
}

// Unsupported flags the one MySQL relocation pattern this renderer knows it
// cannot express safely: renaming a column in the same ALTER TABLE
// statement as changing its type. Older MySQL (pre-8.0 information_schema
// semantics aside) requires CHANGE COLUMN old new type, which this renderer
// does not special-case; splitting the two into separate steps is left to
// the inferrer's phase ordering, so a combined operation here is a modeling
// error the caller should have already ruled out and is rejected instead of
// silently mis-rendered.
func (*Dialect) Unsupported(n sqlast.Node) error {
	alter, ok := n.(*sqlast.AlterTable)
	if !ok {
		return nil
	}
	hasRetype, hasRename := false, false
	for _, op := range alter.Operations {
		switch op.(type) {
		case sqlast.AlterColumnType:
			hasRetype = true
		case sqlast.RenameColumn:
			hasRename = true
		}
	}
	if hasRetype && hasRename {
		return &renderer.ErrUnsupported{
			Family: sqlast.MySQL,
			Reason: "cannot combine a column rename with a type change in one ALTER TABLE on MySQL",
		}
	}
	return nil
}
