package executor

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/sqlast"
)

func TestPlaceholder(t *testing.T) {
	c := qt.New(t)

	pg := &Executor{family: sqlast.Postgres}
	c.Assert(pg.placeholder(1), qt.Equals, "$1")

	my := &Executor{family: sqlast.MySQL}
	c.Assert(my.placeholder(1), qt.Equals, "?")

	lite := &Executor{family: sqlast.SQLite}
	c.Assert(lite.placeholder(1), qt.Equals, "?")
}
