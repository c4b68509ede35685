package cli

import (
	"github.com/kodeflow/datamodel/renderer"
	mysqldialect "github.com/kodeflow/datamodel/renderer/dialects/mysql"
	pgdialect "github.com/kodeflow/datamodel/renderer/dialects/postgres"
	sqlitedialect "github.com/kodeflow/datamodel/renderer/dialects/sqlite"
	"github.com/kodeflow/datamodel/sqlast"
)

// RendererFor returns the renderer.Dialect implementation for family.
func RendererFor(family sqlast.SqlFamily) renderer.Dialect {
	switch family {
	case sqlast.MySQL:
		return mysqldialect.New()
	case sqlast.SQLite:
		return sqlitedialect.New()
	default:
		return pgdialect.New()
	}
}

// DriverNameFor returns the database/sql driver name registered for family.
// Postgres defaults to the pgx stdlib adapter; pass pgDriver="pq" to select
// the lib/pq adapter instead, both of which are registered as blank imports
// by the migrate subcommand.
func DriverNameFor(family sqlast.SqlFamily, pgDriver string) string {
	switch family {
	case sqlast.MySQL:
		return "mysql"
	case sqlast.SQLite:
		return "sqlite3"
	default:
		if pgDriver == "pq" {
			return "postgres"
		}
		return "pgx"
	}
}
