package renderer

import (
	"fmt"
	"strings"

	"github.com/kodeflow/datamodel/sqlast"
)

// Renderer walks a sqlast.Node sequence and accumulates its DDL statements
// in order: usually one per node, but one per operation for a
// multi-operation AlterTable (not every dialect allows combining them
// reliably), two for a foreign key added or dropped together with its
// column outside SQLite, and none for an enum node on a dialect without
// native enums.
type Renderer struct {
	dialect    Dialect
	statements []string
}

// New returns a Renderer for the given dialect.
func New(d Dialect) *Renderer { return &Renderer{dialect: d} }

// Render lowers every node in order, returning the DDL statement list or
// the first error encountered (either a rendering bug or an
// *ErrUnsupported from the dialect).
func Render(nodes []sqlast.Node, d Dialect) ([]string, error) {
	r := New(d)
	if err := sqlast.Render(nodes, r); err != nil {
		return nil, err
	}
	return r.statements, nil
}

func (r *Renderer) emit(stmt string) { r.statements = append(r.statements, stmt) }

func (r *Renderer) check(n sqlast.Node) error {
	if err := r.dialect.Unsupported(n); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) q(name string) string { return r.dialect.QuoteIdent(name) }

func (r *Renderer) columnDef(c sqlast.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", r.q(c.Name), r.dialect.ColumnType(c))
	if c.Primary {
		b.WriteString(" PRIMARY KEY")
	}
	if ai := r.dialect.AutoIncrementClause(c); ai != "" {
		b.WriteString(" " + ai)
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	return b.String()
}

func (r *Renderer) VisitCreateTable(n *sqlast.CreateTable) error {
	if err := r.check(n); err != nil {
		return err
	}
	defs := make([]string, 0, len(n.Columns)+1+len(n.ForeignKeys))
	for _, c := range n.Columns {
		defs = append(defs, r.columnDef(c))
	}
	if len(n.PrimaryKey) > 0 {
		cols := make([]string, len(n.PrimaryKey))
		for i, c := range n.PrimaryKey {
			cols[i] = r.q(c)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(cols, ", ")))
	}
	for _, fk := range n.ForeignKeys {
		defs = append(defs, r.fkConstraintDef(fk))
	}
	r.emit(fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", r.q(n.Name), strings.Join(defs, ",\n  ")))
	return nil
}

func (r *Renderer) fkConstraintDef(fk sqlast.ForeignKey) string {
	onDelete := fk.OnDelete
	if onDelete == "" {
		onDelete = "NO ACTION"
	}
	def := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
		r.q(fk.Column), r.q(fk.RefTable), r.q(fk.RefColumn), onDelete)
	if fk.Name != "" {
		def = fmt.Sprintf("CONSTRAINT %s %s", r.q(fk.Name), def)
	}
	return def
}

func (r *Renderer) VisitDropTable(n *sqlast.DropTable) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.emit(fmt.Sprintf("DROP TABLE %s", r.q(n.Name)))
	return nil
}

func (r *Renderer) VisitRenameTable(n *sqlast.RenameTable) error {
	if err := r.check(n); err != nil {
		return err
	}
	if r.dialect.Family() == sqlast.Postgres {
		r.emit(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", r.q(n.OldName), r.q(n.NewName)))
	} else {
		r.emit(fmt.Sprintf("RENAME TABLE %s TO %s", r.q(n.OldName), r.q(n.NewName)))
	}
	return nil
}

func (r *Renderer) VisitAlterTable(n *sqlast.AlterTable) error {
	if err := r.check(n); err != nil {
		return err
	}
	for _, op := range n.Operations {
		switch o := op.(type) {
		case sqlast.AddColumn:
			r.emit(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", r.q(n.Name), r.columnDef(o.Column)))
		case sqlast.DropColumn:
			r.emit(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", r.q(n.Name), r.q(o.Name)))
		case sqlast.AlterColumnType:
			r.emit(r.alterColumnTypeStmt(n.Name, o))
		case sqlast.RenameColumn:
			r.emit(r.renameColumnStmt(n.Name, o))
		}
	}
	return nil
}

func (r *Renderer) alterColumnTypeStmt(table string, o sqlast.AlterColumnType) string {
	// SQLite never reaches here: its Dialect.Unsupported rejects
	// AlterColumnType before the renderer formats a statement.
	if r.dialect.Family() == sqlast.MySQL {
		return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", r.q(table), r.columnDef(o.To))
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", r.q(table), r.q(o.Name), r.dialect.ColumnType(o.To))
}

func (r *Renderer) renameColumnStmt(table string, o sqlast.RenameColumn) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", r.q(table), r.q(o.OldName), r.q(o.NewName))
}

func (r *Renderer) VisitCreateEnum(n *sqlast.CreateEnum) error {
	if err := r.check(n); err != nil {
		return err
	}
	if !r.dialect.SupportsNativeEnum() {
		return nil // dialect inlines enums as their string type instead
	}
	quoted := make([]string, len(n.Values))
	for i, v := range n.Values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	r.emit(fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", r.q(n.Name), strings.Join(quoted, ", ")))
	return nil
}

func (r *Renderer) VisitDropEnum(n *sqlast.DropEnum) error {
	if err := r.check(n); err != nil {
		return err
	}
	if !r.dialect.SupportsNativeEnum() {
		return nil
	}
	r.emit(fmt.Sprintf("DROP TYPE %s", r.q(n.Name)))
	return nil
}

func (r *Renderer) VisitCreateIndex(n *sqlast.CreateIndex) error {
	if err := r.check(n); err != nil {
		return err
	}
	cols := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		cols[i] = r.q(c)
	}
	kw := "INDEX"
	if n.Unique {
		kw = "UNIQUE INDEX"
	}
	r.emit(fmt.Sprintf("CREATE %s %s ON %s (%s)", kw, r.q(n.Name), r.q(n.Table), strings.Join(cols, ", ")))
	return nil
}

func (r *Renderer) VisitDropIndex(n *sqlast.DropIndex) error {
	if err := r.check(n); err != nil {
		return err
	}
	if r.dialect.Family() == sqlast.MySQL {
		r.emit(fmt.Sprintf("DROP INDEX %s ON %s", r.q(n.Name), r.q(n.Table)))
	} else {
		r.emit(fmt.Sprintf("DROP INDEX %s", r.q(n.Name)))
	}
	return nil
}

func (r *Renderer) VisitAddForeignKey(n *sqlast.AddForeignKey) error {
	if err := r.check(n); err != nil {
		return err
	}
	onDelete := n.FK.OnDelete
	if onDelete == "" {
		onDelete = "NO ACTION"
	}
	name := n.FK.Name
	if name == "" {
		name = fmt.Sprintf("fk_%s_%s", n.FK.Table, n.FK.Column)
	}
	if n.WithColumn != nil {
		if r.dialect.Family() == sqlast.SQLite {
			// SQLite cannot add a constraint to an existing table, but a new
			// column may carry its REFERENCES clause inline.
			r.emit(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s REFERENCES %s (%s) ON DELETE %s",
				r.q(n.FK.Table), r.columnDef(*n.WithColumn), r.q(n.FK.RefTable), r.q(n.FK.RefColumn), onDelete))
			return nil
		}
		r.emit(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", r.q(n.FK.Table), r.columnDef(*n.WithColumn)))
	}
	r.emit(fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
		r.q(n.FK.Table), r.q(name), r.q(n.FK.Column), r.q(n.FK.RefTable), r.q(n.FK.RefColumn), onDelete,
	))
	return nil
}

func (r *Renderer) VisitDropForeignKey(n *sqlast.DropForeignKey) error {
	if err := r.check(n); err != nil {
		return err
	}
	if r.dialect.Family() == sqlast.SQLite {
		// Dropping the column drops its foreign key with it; Unsupported has
		// already rejected the constraint-only form for this dialect.
		r.emit(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", r.q(n.Table), r.q(n.DropsColumn)))
		return nil
	}
	if r.dialect.Family() == sqlast.MySQL {
		r.emit(fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", r.q(n.Table), r.q(n.Name)))
	} else {
		r.emit(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", r.q(n.Table), r.q(n.Name)))
	}
	if n.DropsColumn != "" {
		r.emit(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", r.q(n.Table), r.q(n.DropsColumn)))
	}
	return nil
}
