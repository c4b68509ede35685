// Package mysql implements inspector.Inspector by reading MySQL's
// information_schema.
package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-extras/go-kit/ptr"

	"github.com/kodeflow/datamodel/inspector"
)

// Reader reads the current schema of a MySQL database.
type Reader struct {
	db     *sql.DB
	schema string // the database/schema name; MySQL has no separate concept
}

// New returns a Reader scoped to the given database name.
func New(db *sql.DB, schema string) *Reader {
	return &Reader{db: db, schema: schema}
}

var _ inspector.Inspector = (*Reader)(nil)

func (r *Reader) ReadSchema() (*inspector.DatabaseSchema, error) {
	names, err := r.tableNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var tables []inspector.Table
	for _, name := range names {
		cols, pk, err := r.readColumns(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns for table %s: %w", name, err)
		}
		fks, err := r.readForeignKeys(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys for table %s: %w", name, err)
		}
		idx, err := r.readIndexes(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read indexes for table %s: %w", name, err)
		}
		fkByColumn := make(map[string]*inspector.ForeignKey, len(fks))
		for i := range fks {
			fk := fks[i]
			fkByColumn[fk.Column] = &fk
		}
		for i := range cols {
			if fk, ok := fkByColumn[cols[i].Name]; ok {
				cols[i].ForeignKey = fk
			}
		}
		tables = append(tables, inspector.Table{
			Name: name, Columns: cols, PrimaryKeyColumns: pk, Indexes: idx, ForeignKeys: fks,
		})
	}
	return &inspector.DatabaseSchema{Tables: tables}, nil
}

func (r *Reader) tableNames() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_name != 'schema_migrations'
		ORDER BY table_name`, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *Reader) readColumns(table string) ([]inspector.Column, []string, error) {
	rows, err := r.db.Query(`
		SELECT column_name, data_type, is_nullable, column_default, column_key
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, r.schema, table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []inspector.Column
	var pk []string
	for rows.Next() {
		var name, dataType, isNullable, columnKey string
		var def sql.NullString
		if err := rows.Scan(&name, &dataType, &isNullable, &def, &columnKey); err != nil {
			return nil, nil, err
		}
		col := inspector.Column{Name: name, Tpe: columnType(dataType), IsRequired: isNullable == "NO"}
		if def.Valid {
			col.Default = ptr.To(def.String)
		}
		if columnKey == "PRI" {
			pk = append(pk, name)
		}
		cols = append(cols, col)
	}
	return cols, pk, rows.Err()
}

func columnType(dataType string) inspector.ColumnType {
	switch strings.ToLower(dataType) {
	case "int", "bigint", "smallint", "tinyint":
		return inspector.ColInt
	case "double", "float", "decimal":
		return inspector.ColFloat
	case "datetime", "timestamp", "date":
		return inspector.ColDateTime
	default: // varchar, text, enum (reported as string per spec), etc.
		return inspector.ColString
	}
}

func (r *Reader) readForeignKeys(table string) ([]inspector.ForeignKey, error) {
	rows, err := r.db.Query(`
		SELECT kcu.constraint_name, kcu.column_name, kcu.referenced_table_name, kcu.referenced_column_name,
		       COALESCE(rc.delete_rule, 'NO ACTION')
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON kcu.constraint_name = rc.constraint_name AND kcu.table_schema = rc.constraint_schema
		WHERE kcu.table_schema = ? AND kcu.table_name = ? AND kcu.referenced_table_name IS NOT NULL`,
		r.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []inspector.ForeignKey
	for rows.Next() {
		var fk inspector.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.RefTable, &fk.RefColumn, &fk.OnDelete); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (r *Reader) readIndexes(table string) ([]inspector.Index, error) {
	rows, err := r.db.Query(`SHOW INDEX FROM ` + "`" + table + "`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*inspector.Index)
	var order []string
	for rows.Next() {
		scanned := make([]any, len(cols))
		holders := make([]sql.NullString, len(cols))
		for i := range holders {
			scanned[i] = &holders[i]
		}
		if err := rows.Scan(scanned...); err != nil {
			return nil, err
		}
		values := make(map[string]string, len(cols))
		for i, c := range cols {
			values[strings.ToLower(c)] = holders[i].String
		}
		name := values["key_name"]
		if name == "PRIMARY" {
			continue // primary key is reported via column_key in readColumns
		}
		idx, ok := byName[name]
		if !ok {
			nonUnique := values["non_unique"]
			idx = &inspector.Index{Name: name, Unique: nonUnique == "0"}
			byName[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, values["column_name"])
	}
	out := make([]inspector.Index, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, rows.Err()
}
