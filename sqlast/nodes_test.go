package sqlast_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/sqlast"
)

func TestParseFamily(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		provider string
		want     sqlast.SqlFamily
		ok       bool
	}{
		{"postgresql", sqlast.Postgres, true},
		{"postgres", sqlast.Postgres, true},
		{"PGX", sqlast.Postgres, true},
		{"mysql", sqlast.MySQL, true},
		{"sqlite", sqlast.SQLite, true},
		{"sqlite3", sqlast.SQLite, true},
		{"oracle", 0, false},
	}
	for _, tt := range tests {
		got, ok := sqlast.ParseFamily(tt.provider)
		c.Assert(ok, qt.Equals, tt.ok, qt.Commentf("provider=%s", tt.provider))
		if ok {
			c.Assert(got, qt.Equals, tt.want, qt.Commentf("provider=%s", tt.provider))
		}
	}
}

func TestSqlFamily_String(t *testing.T) {
	c := qt.New(t)
	c.Assert(sqlast.Postgres.String(), qt.Equals, "postgres")
	c.Assert(sqlast.MySQL.String(), qt.Equals, "mysql")
	c.Assert(sqlast.SQLite.String(), qt.Equals, "sqlite")
}
