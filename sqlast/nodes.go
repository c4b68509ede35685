// Package sqlast is a dialect-neutral SQL DDL AST. An inferrer.Plan is
// lowered into a slice of these nodes, which a dialect-specific renderer
// then visits to produce DDL text.
package sqlast

import "strings"

// Node is any DDL statement that can be visited by a Visitor.
type Node interface {
	Accept(v Visitor) error
}

// SqlFamily is the closed set of target SQL dialects a Plan can be rendered
// for. It is fixed once per render call; nothing in sqlast itself branches
// on it, only the renderer package and its dialects under renderer/dialects
// do.
type SqlFamily int

const (
	Postgres SqlFamily = iota
	MySQL
	SQLite
)

func (f SqlFamily) String() string {
	switch f {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// ParseFamily normalizes a datasource provider string (as written in a
// `source db { provider ... }` block, or passed on a CLI flag) to a
// SqlFamily. The second return is false for an unrecognized provider.
func ParseFamily(provider string) (SqlFamily, bool) {
	switch strings.ToLower(provider) {
	case "postgres", "postgresql", "pgx":
		return Postgres, true
	case "mysql":
		return MySQL, true
	case "sqlite", "sqlite3":
		return SQLite, true
	default:
		return 0, false
	}
}

// ColumnType is a dialect-neutral logical column type; dialect renderers map
// it to their own physical type name (e.g. TypeInt -> INTEGER/INT/INTEGER on
// Postgres/MySQL/SQLite).
type ColumnType int

const (
	TypeInt ColumnType = iota
	TypeFloat
	TypeBoolean
	TypeString
	TypeDateTime
	TypeEnum
)

// Column is a single column definition, used both in CreateTable and in
// AddColumn/AlterColumnType operations.
type Column struct {
	Name       string
	Type       ColumnType
	EnumName   string // set iff Type == TypeEnum
	Nullable   bool
	Primary    bool
	Unique     bool
	AutoIncr   bool
}

// CreateTable represents CREATE TABLE.
//
// A single-column primary key is carried on the column itself via
// Column.Primary; PrimaryKey is set instead when the key is composite (e.g.
// a scalar-list side table's (nodeId, position)), in which case no column
// has Primary set. ForeignKeys are emitted as table-level constraints so
// they work on every dialect, including SQLite, which cannot add a
// constraint to an existing table.
type CreateTable struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

func (n *CreateTable) Accept(v Visitor) error { return v.VisitCreateTable(n) }

// DropTable represents DROP TABLE.
type DropTable struct {
	Name string
}

func (n *DropTable) Accept(v Visitor) error { return v.VisitDropTable(n) }

// RenameTable represents renaming a table (used for join-table renames).
type RenameTable struct {
	OldName string
	NewName string
}

func (n *RenameTable) Accept(v Visitor) error { return v.VisitRenameTable(n) }

// AlterOperation is one operation inside an AlterTable statement.
type AlterOperation interface {
	alterOperation()
}

type AddColumn struct{ Column Column }

func (AddColumn) alterOperation() {}

type DropColumn struct{ Name string }

func (DropColumn) alterOperation() {}

type AlterColumnType struct {
	Name string
	To   Column
}

func (AlterColumnType) alterOperation() {}

type RenameColumn struct {
	OldName string
	NewName string
}

func (RenameColumn) alterOperation() {}

// AlterTable groups one or more operations against the same table, mirroring
// how a single migration step against a table is rendered as one statement
// per operation but grouped for readability.
type AlterTable struct {
	Name       string
	Operations []AlterOperation
}

func (n *AlterTable) Accept(v Visitor) error { return v.VisitAlterTable(n) }

// CreateEnum represents CREATE TYPE ... AS ENUM (PostgreSQL) or its
// emulation on dialects without a native enum type.
type CreateEnum struct {
	Name   string
	Values []string
}

func (n *CreateEnum) Accept(v Visitor) error { return v.VisitCreateEnum(n) }

// DropEnum represents DROP TYPE for an enum.
type DropEnum struct {
	Name string
}

func (n *DropEnum) Accept(v Visitor) error { return v.VisitDropEnum(n) }

// CreateIndex represents CREATE [UNIQUE] INDEX.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

func (n *CreateIndex) Accept(v Visitor) error { return v.VisitCreateIndex(n) }

// DropIndex represents DROP INDEX.
type DropIndex struct {
	Name  string
	Table string
}

func (n *DropIndex) Accept(v Visitor) error { return v.VisitDropIndex(n) }

// ForeignKey is one foreign key constraint.
type ForeignKey struct {
	Name      string
	Table     string
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string // "", "CASCADE", "SET NULL", "RESTRICT"
}

// AddForeignKey represents ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY.
// When the referencing column does not exist yet (an inline relation being
// added to an existing table), WithColumn carries its definition: dialects
// with ADD CONSTRAINT emit an ADD COLUMN first, while SQLite folds the
// REFERENCES clause into the ADD COLUMN itself.
type AddForeignKey struct {
	FK         ForeignKey
	WithColumn *Column
}

func (n *AddForeignKey) Accept(v Visitor) error { return v.VisitAddForeignKey(n) }

// DropForeignKey represents ALTER TABLE ... DROP CONSTRAINT/FOREIGN KEY.
// DropsColumn, when set, names the referencing column to drop alongside the
// constraint (an inline relation being removed entirely); on SQLite the
// column drop is the only statement, since the constraint goes with it.
type DropForeignKey struct {
	Table       string
	Name        string
	DropsColumn string
}

func (n *DropForeignKey) Accept(v Visitor) error { return v.VisitDropForeignKey(n) }
