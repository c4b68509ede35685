// Package planner lowers an inferrer.Plan into a dialect-neutral sqlast
// node sequence. Each dialect's renderer then turns that sequence into DDL
// text, so this package itself never branches on target database.
package planner

import (
	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/sqlast"
)

// Lower turns every step of plan into one or more sqlast nodes, preserving
// step order: statements that must run before others (e.g. CREATE TYPE
// before the CREATE TABLE that references it) are already ordered by the
// inferrer's phases.
func Lower(plan *inferrer.Plan) []sqlast.Node {
	var nodes []sqlast.Node
	for _, s := range plan.Steps {
		nodes = append(nodes, lowerStep(s)...)
	}
	return nodes
}

func lowerStep(s inferrer.MigrationStep) []sqlast.Node {
	switch s.Kind {
	case inferrer.StepCreateEnum:
		return []sqlast.Node{&sqlast.CreateEnum{Name: s.EnumName, Values: s.EnumValues}}
	case inferrer.StepDropEnum:
		return []sqlast.Node{&sqlast.DropEnum{Name: s.EnumName}}
	case inferrer.StepCreateTable:
		cols := make([]sqlast.Column, len(s.Columns))
		var pkCols []string
		for i, c := range s.Columns {
			cols[i] = lowerColumn(c)
			if c.IsPrimary {
				pkCols = append(pkCols, c.Name)
			}
		}
		table := &sqlast.CreateTable{Name: s.TableName, Columns: cols}
		if len(pkCols) > 1 {
			// Composite key (a scalar-list side table): move the PRIMARY KEY
			// to a table constraint, since it can't sit on either column.
			for i := range table.Columns {
				table.Columns[i].Primary = false
			}
			table.PrimaryKey = pkCols
		}
		return []sqlast.Node{table}
	case inferrer.StepDropTable:
		return []sqlast.Node{&sqlast.DropTable{Name: s.TableName}}
	case inferrer.StepAddColumn:
		return []sqlast.Node{&sqlast.AlterTable{Name: s.TableName, Operations: []sqlast.AlterOperation{
			sqlast.AddColumn{Column: lowerColumn(s.Column)},
		}}}
	case inferrer.StepDropColumn:
		return []sqlast.Node{&sqlast.AlterTable{Name: s.TableName, Operations: []sqlast.AlterOperation{
			sqlast.DropColumn{Name: s.ColumnName},
		}}}
	case inferrer.StepAlterColumnType:
		// Cascading FKs bracket the type change: their constraints must be
		// gone before either end's column changes type, then come back once
		// both ends agree again.
		var nodes []sqlast.Node
		for _, fk := range s.CascadeFKs {
			nodes = append(nodes, &sqlast.DropForeignKey{Table: fk.Table, Name: fk.Name})
		}
		nodes = append(nodes, &sqlast.AlterTable{Name: s.TableName, Operations: []sqlast.AlterOperation{
			sqlast.AlterColumnType{Name: s.Column.Name, To: lowerColumn(s.Column)},
		}})
		for _, fk := range s.CascadeFKs {
			nodes = append(nodes, &sqlast.AlterTable{Name: fk.Table, Operations: []sqlast.AlterOperation{
				sqlast.AlterColumnType{Name: fk.Column, To: lowerColumn(inferrer.ColumnSpec{Name: fk.Column, Type: fk.ColumnType, Required: fk.ColumnRequired})},
			}})
		}
		for _, fk := range s.CascadeFKs {
			nodes = append(nodes, &sqlast.AddForeignKey{FK: lowerFK(fk)})
		}
		return nodes
	case inferrer.StepRenameColumn:
		return []sqlast.Node{&sqlast.AlterTable{Name: s.TableName, Operations: []sqlast.AlterOperation{
			sqlast.RenameColumn{OldName: s.ColumnName, NewName: s.NewColumnName},
		}}}
	case inferrer.StepAddUniqueIndex:
		return []sqlast.Node{&sqlast.CreateIndex{Name: s.IndexName, Table: s.TableName, Columns: s.IndexColumns, Unique: true}}
	case inferrer.StepDropUniqueIndex:
		return []sqlast.Node{&sqlast.DropIndex{Name: s.IndexName, Table: s.TableName}}
	case inferrer.StepAddForeignKey:
		node := &sqlast.AddForeignKey{FK: lowerFK(s.FK)}
		if s.FK.WithColumn {
			col := lowerColumn(inferrer.ColumnSpec{Name: s.FK.Column, Type: s.FK.ColumnType, Required: s.FK.ColumnRequired})
			node.WithColumn = &col
		}
		return []sqlast.Node{node}
	case inferrer.StepDropForeignKey:
		node := &sqlast.DropForeignKey{Table: s.FK.Table, Name: s.FK.Name}
		if s.FK.WithColumn {
			node.DropsColumn = s.FK.Column
		}
		return []sqlast.Node{node}
	case inferrer.StepCreateJoinTable:
		return []sqlast.Node{
			&sqlast.CreateTable{
				Name: s.JoinTable,
				Columns: []sqlast.Column{
					lowerColumn(inferrer.ColumnSpec{Name: s.JoinColumnA, Type: s.JoinFKA.ColumnType, Required: true}),
					lowerColumn(inferrer.ColumnSpec{Name: s.JoinColumnB, Type: s.JoinFKB.ColumnType, Required: true}),
				},
				ForeignKeys: []sqlast.ForeignKey{lowerFK(s.JoinFKA), lowerFK(s.JoinFKB)},
			},
			&sqlast.CreateIndex{Name: "idx_" + s.JoinTable, Table: s.JoinTable, Columns: []string{s.JoinColumnA, s.JoinColumnB}, Unique: true},
		}
	case inferrer.StepDropJoinTable:
		return []sqlast.Node{&sqlast.DropTable{Name: s.JoinTable}}
	case inferrer.StepRenameJoinTable:
		return []sqlast.Node{&sqlast.RenameTable{OldName: s.OldJoinTable, NewName: s.JoinTable}}
	default:
		return nil
	}
}

func lowerColumn(c inferrer.ColumnSpec) sqlast.Column {
	col := sqlast.Column{
		Name:     c.Name,
		Nullable: !c.Required,
		Primary:  c.IsPrimary,
		AutoIncr: c.AutoIncrement,
	}
	switch c.Type.Kind {
	case idm.TIInt:
		col.Type = sqlast.TypeInt
	case idm.TIFloat:
		col.Type = sqlast.TypeFloat
	case idm.TIBoolean:
		col.Type = sqlast.TypeBoolean
	case idm.TIDateTime:
		col.Type = sqlast.TypeDateTime
	case idm.TIEnum:
		col.Type = sqlast.TypeEnum
		col.EnumName = c.Type.Enum.Name
	default: // TIString, TIGraphQLID, TIUUID
		col.Type = sqlast.TypeString
	}
	return col
}

func lowerFK(fk inferrer.FKSpec) sqlast.ForeignKey {
	return sqlast.ForeignKey{
		Name:      fk.Name,
		Table:     fk.Table,
		Column:    fk.Column,
		RefTable:  fk.RefTable,
		RefColumn: fk.RefColumn,
		OnDelete:  onDeleteKeyword(fk.OnDelete),
	}
}

func onDeleteKeyword(a dml.OnDeleteAction) string {
	switch a {
	case dml.Cascade:
		return "CASCADE"
	case dml.SetNull:
		return "SET NULL"
	case dml.Restrict:
		return "RESTRICT"
	default:
		return ""
	}
}
