// Package sqlite implements inspector.Inspector by reading SQLite's
// sqlite_master catalog and the table_info/foreign_key_list/index_list
// PRAGMAs.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-extras/go-kit/ptr"

	"github.com/kodeflow/datamodel/inspector"
)

// Reader reads the current schema of a SQLite database.
type Reader struct {
	db *sql.DB
}

// New returns a Reader over db.
func New(db *sql.DB) *Reader { return &Reader{db: db} }

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
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')
		ORDER BY name`)
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
	rows, err := r.db.Query(fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []inspector.Column
	var pk []string
	for rows.Next() {
		var cid int
		var name, declType string
		var notNull, pkOrdinal int
		var def sql.NullString
		if err := rows.Scan(&cid, &name, &declType, &notNull, &def, &pkOrdinal); err != nil {
			return nil, nil, err
		}
		col := inspector.Column{Name: name, Tpe: columnType(declType), IsRequired: notNull == 1 || pkOrdinal > 0}
		if def.Valid {
			col.Default = ptr.To(def.String)
		}
		if pkOrdinal > 0 {
			pk = append(pk, name)
		}
		cols = append(cols, col)
	}
	return cols, pk, rows.Err()
}

// columnType maps SQLite's loose type-affinity declarations onto our
// dialect-neutral set. SQLite stores whatever the CREATE TABLE declared
// verbatim rather than a fixed catalog type, so this is a substring match on
// the declared type name rather than an exact one.
func columnType(declType string) inspector.ColumnType {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "INT"):
		return inspector.ColInt
	case strings.Contains(t, "REAL"), strings.Contains(t, "DOUB"), strings.Contains(t, "FLOA"):
		return inspector.ColFloat
	case strings.Contains(t, "DATETIME"), strings.Contains(t, "DATE"):
		return inspector.ColDateTime
	default:
		return inspector.ColString
	}
}

func (r *Reader) readForeignKeys(table string) ([]inspector.ForeignKey, error) {
	rows, err := r.db.Query(fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []inspector.ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fks = append(fks, inspector.ForeignKey{
			Name:      fmt.Sprintf("%s_fk_%d", table, id),
			Column:    from,
			RefTable:  refTable,
			RefColumn: to,
			OnDelete:  strings.ToUpper(onDelete),
		})
	}
	return fks, rows.Err()
}

func (r *Reader) readIndexes(table string) ([]inspector.Index, error) {
	rows, err := r.db.Query(fmt.Sprintf(`PRAGMA index_list(%q)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type listRow struct {
		name    string
		unique  bool
		origin  string
	}
	var list []listRow
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		list = append(list, listRow{name: name, unique: unique == 1, origin: origin})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []inspector.Index
	for _, l := range list {
		if l.origin == "pk" {
			continue // primary key is reported via table_info, not as an index
		}
		cols, err := r.indexColumns(l.name)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, inspector.Index{Name: l.name, Columns: cols, Unique: l.unique})
	}
	return indexes, nil
}

func (r *Reader) indexColumns(index string) ([]string, error) {
	rows, err := r.db.Query(fmt.Sprintf(`PRAGMA index_info(%q)`, index))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
