package planner_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/idm"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/migration/planner"
	"github.com/kodeflow/datamodel/sqlast"
)

func lowerOne(step inferrer.MigrationStep) []sqlast.Node {
	return planner.Lower(&inferrer.Plan{Steps: []inferrer.MigrationStep{step}})
}

func TestLower_CompositePrimaryKeyBecomesTableConstraint(t *testing.T) {
	c := qt.New(t)
	nodes := lowerOne(inferrer.MigrationStep{
		Kind:      inferrer.StepCreateTable,
		TableName: "Post_tags",
		Columns: []inferrer.ColumnSpec{
			{Name: "nodeId", Type: idm.TypeIdentifier{Kind: idm.TIInt}, Required: true, IsPrimary: true},
			{Name: "position", Type: idm.TypeIdentifier{Kind: idm.TIInt}, Required: true, IsPrimary: true},
			{Name: "value", Type: idm.TypeIdentifier{Kind: idm.TIString}, Required: true},
		},
	})
	c.Assert(nodes, qt.HasLen, 1)

	table := nodes[0].(*sqlast.CreateTable)
	c.Assert(table.PrimaryKey, qt.DeepEquals, []string{"nodeId", "position"})
	for _, col := range table.Columns {
		c.Assert(col.Primary, qt.IsFalse)
	}
}

func TestLower_SingleColumnPrimaryKeyStaysInline(t *testing.T) {
	c := qt.New(t)
	nodes := lowerOne(inferrer.MigrationStep{
		Kind:      inferrer.StepCreateTable,
		TableName: "User",
		Columns: []inferrer.ColumnSpec{
			{Name: "id", Type: idm.TypeIdentifier{Kind: idm.TIInt}, Required: true, IsPrimary: true, AutoIncrement: true},
		},
	})
	table := nodes[0].(*sqlast.CreateTable)
	c.Assert(table.PrimaryKey, qt.HasLen, 0)
	c.Assert(table.Columns[0].Primary, qt.IsTrue)
	c.Assert(table.Columns[0].AutoIncr, qt.IsTrue)
}

func TestLower_JoinTableCarriesTypedColumnsAndFKs(t *testing.T) {
	c := qt.New(t)
	nodes := lowerOne(inferrer.MigrationStep{
		Kind:        inferrer.StepCreateJoinTable,
		JoinTable:   "_AToB",
		JoinColumnA: "A",
		JoinColumnB: "B",
		JoinFKA: inferrer.FKSpec{
			Table: "_AToB", Column: "A", RefTable: "A", RefColumn: "id",
			ColumnType: idm.TypeIdentifier{Kind: idm.TIInt}, ColumnRequired: true,
			Name: "fk__AToB_A",
		},
		JoinFKB: inferrer.FKSpec{
			Table: "_AToB", Column: "B", RefTable: "B", RefColumn: "id",
			ColumnType: idm.TypeIdentifier{Kind: idm.TIInt}, ColumnRequired: true,
			Name: "fk__AToB_B",
		},
	})
	c.Assert(nodes, qt.HasLen, 2)

	table := nodes[0].(*sqlast.CreateTable)
	c.Assert(table.Columns[0].Type, qt.Equals, sqlast.TypeInt)
	c.Assert(table.Columns[1].Type, qt.Equals, sqlast.TypeInt)
	c.Assert(table.ForeignKeys, qt.HasLen, 2)
	c.Assert(table.ForeignKeys[0].RefTable, qt.Equals, "A")
	c.Assert(table.ForeignKeys[1].RefTable, qt.Equals, "B")

	index := nodes[1].(*sqlast.CreateIndex)
	c.Assert(index.Unique, qt.IsTrue)
	c.Assert(index.Columns, qt.DeepEquals, []string{"A", "B"})
}

func TestLower_AlterIDTypeBracketsCascadedFKs(t *testing.T) {
	c := qt.New(t)
	fk := inferrer.FKSpec{
		Table: "A", Column: "b", RefTable: "B", RefColumn: "id",
		ColumnType: idm.TypeIdentifier{Kind: idm.TIGraphQLID}, ColumnRequired: true,
		Name: "fk_A_b",
	}
	nodes := lowerOne(inferrer.MigrationStep{
		Kind:       inferrer.StepAlterColumnType,
		TableName:  "B",
		Column:     inferrer.ColumnSpec{Name: "id", Type: idm.TypeIdentifier{Kind: idm.TIGraphQLID}, Required: true, IsPrimary: true},
		CascadeFKs: []inferrer.FKSpec{fk},
	})
	c.Assert(nodes, qt.HasLen, 4)

	_, isDrop := nodes[0].(*sqlast.DropForeignKey)
	c.Assert(isDrop, qt.IsTrue)

	parent := nodes[1].(*sqlast.AlterTable)
	c.Assert(parent.Name, qt.Equals, "B")

	child := nodes[2].(*sqlast.AlterTable)
	c.Assert(child.Name, qt.Equals, "A")

	readd := nodes[3].(*sqlast.AddForeignKey)
	c.Assert(readd.FK.Name, qt.Equals, "fk_A_b")
	c.Assert(readd.WithColumn, qt.IsNil)
}

func TestLower_AddInlineFKAddsColumn(t *testing.T) {
	c := qt.New(t)
	nodes := lowerOne(inferrer.MigrationStep{
		Kind: inferrer.StepAddForeignKey,
		FK: inferrer.FKSpec{
			Table: "A", Column: "b", RefTable: "B", RefColumn: "id",
			ColumnType: idm.TypeIdentifier{Kind: idm.TIInt}, ColumnRequired: true,
			Name: "fk_A_b", WithColumn: true,
		},
	})
	c.Assert(nodes, qt.HasLen, 1)

	add := nodes[0].(*sqlast.AddForeignKey)
	c.Assert(add.WithColumn, qt.Not(qt.IsNil))
	c.Assert(add.WithColumn.Name, qt.Equals, "b")
	c.Assert(add.WithColumn.Type, qt.Equals, sqlast.TypeInt)
	c.Assert(add.WithColumn.Nullable, qt.IsFalse)
}
