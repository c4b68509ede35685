// Package inferrer diffs two successive internal data models and produces
// an ordered, deterministic list of migration steps.
package inferrer

import (
	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
)

// ColumnSpec is the physical shape of a single column, used both when
// creating a table and when adding/altering a column on an existing one.
type ColumnSpec struct {
	Name          string
	Type          idm.TypeIdentifier
	Required      bool
	Default       *dml.DefaultValue
	IsPrimary     bool
	AutoIncrement bool // true for an Int @id column backed by a sequence/AUTO_INCREMENT
}

// StepKind discriminates MigrationStep's variants. Steps are grouped into
// phases (see Infer) and are commutative within a phase but never reordered
// across phases.
type StepKind int

const (
	StepCreateEnum StepKind = iota
	StepDropEnum
	StepCreateTable
	StepDropTable
	StepAddColumn
	StepDropColumn
	StepAlterColumnType
	StepRenameColumn
	StepAddUniqueIndex
	StepDropUniqueIndex
	StepAddForeignKey
	StepDropForeignKey
	StepCreateJoinTable
	StepDropJoinTable
	StepRenameJoinTable
)

// FKSpec is a single foreign key to add or drop. Table and RefTable are
// physical table names; Name is the constraint name, derived once at
// creation and re-derived identically at drop time so the two always match.
type FKSpec struct {
	Table          string
	Column         string
	RefTable       string
	RefColumn      string
	OnDelete       dml.OnDeleteAction
	Name           string
	ColumnType     idm.TypeIdentifier // type of the referencing column (the referenced id's type)
	ColumnRequired bool               // NOT NULL on the referencing column
	WithColumn     bool               // the step also creates (or drops) the referencing column itself
}

// MigrationStep is one atomic change. Only the fields relevant to Kind are
// populated; this mirrors a tagged union using a single flat struct, which
// keeps the ordered step list trivial to iterate over in the renderer.
type MigrationStep struct {
	Kind StepKind

	// StepCreateEnum / StepDropEnum
	EnumName   string
	EnumValues []string

	// StepCreateTable / StepDropTable
	TableName string
	Columns   []ColumnSpec

	// StepAddColumn / StepDropColumn / StepAlterColumnType / StepRenameColumn
	ColumnName    string
	Column        ColumnSpec
	NewColumnName string
	CascadeFKs    []FKSpec // FKs that must change type alongside an id column

	// StepAddUniqueIndex / StepDropUniqueIndex
	IndexName    string
	IndexColumns []string

	// StepAddForeignKey / StepDropForeignKey
	FK FKSpec

	// StepCreateJoinTable / StepDropJoinTable / StepRenameJoinTable
	JoinTable      string
	JoinModelAName string
	JoinModelBName string
	JoinColumnA    string
	JoinColumnB    string
	JoinFKA        FKSpec // FK from JoinColumnA to model A's id
	JoinFKB        FKSpec // FK from JoinColumnB to model B's id
	OldJoinTable   string
}

// Plan is the full ordered output of Infer: every step, already grouped
// into the phases described in the migration inferrer's component design,
// in emission order.
type Plan struct {
	Steps []MigrationStep
}

// IsEmpty reports whether the plan has no steps, i.e. the two data models
// are already structurally identical.
func (p *Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}
