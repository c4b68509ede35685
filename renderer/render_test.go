package renderer_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/migration/planner"
	"github.com/kodeflow/datamodel/parser"
	"github.com/kodeflow/datamodel/renderer"
	"github.com/kodeflow/datamodel/renderer/dialects/mysql"
	"github.com/kodeflow/datamodel/renderer/dialects/postgres"
	"github.com/kodeflow/datamodel/renderer/dialects/sqlite"
)

func buildIDM(t *testing.T, src string) *idm.InternalDataModel {
	t.Helper()
	ast, err := parser.Parse(src)
	qt.Assert(t, err, qt.IsNil)
	dmModel, err := dml.Build(dml.NewRegistry(), ast)
	qt.Assert(t, err, qt.IsNil)
	out, err := idm.Build(dmModel)
	qt.Assert(t, err, qt.IsNil)
	return out
}

func renderAll(t *testing.T, next *idm.InternalDataModel) (pg, my, lite []string) {
	t.Helper()
	plan := inferrer.Infer(nil, next)
	nodes := planner.Lower(plan)
	pg, err := renderer.Render(nodes, postgres.New())
	qt.Assert(t, err, qt.IsNil)
	my, err = renderer.Render(nodes, mysql.New())
	qt.Assert(t, err, qt.IsNil)
	lite, err = renderer.Render(nodes, sqlite.New())
	qt.Assert(t, err, qt.IsNil)
	return
}

func joinLower(stmts []string) string {
	return strings.ToLower(strings.Join(stmts, "\n"))
}

func TestRender_ReservedKeywordModelQuoted(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model Group {
  id String @id @default(cuid())
  parent Group? @relation(name: "ChildGroups")
  childGroups Group[] @relation(name: "ChildGroups")
}
`)
	pg, my, lite := renderAll(t, out)

	c.Assert(joinLower(pg), qt.Contains, `create table "group"`)
	c.Assert(joinLower(my), qt.Contains, "create table `group`")
	c.Assert(joinLower(lite), qt.Contains, `create table "group"`)

	c.Assert(joinLower(pg), qt.Contains, `references "group"`)
	c.Assert(joinLower(pg), qt.Contains, "on delete no action")
}

func TestRender_ManyToManyJoinTable(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model A {
  id Int @id
  bs B[]
}
model B {
  id Int @id
  as A[]
}
`)
	pg, _, _ := renderAll(t, out)
	joined := joinLower(pg)
	c.Assert(joined, qt.Contains, `create table "_atob"`)
	c.Assert(joined, qt.Contains, `"a" integer not null`)
	c.Assert(joined, qt.Contains, `"b" integer not null`)
	c.Assert(joined, qt.Contains, `foreign key ("a") references "a" ("id") on delete no action`)
	c.Assert(joined, qt.Contains, `foreign key ("b") references "b" ("id") on delete no action`)
}

func TestRender_ScalarListTableCompositePrimaryKey(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model Post {
  id Int @id
  tags String[]
}
`)
	pg, _, lite := renderAll(t, out)
	c.Assert(joinLower(pg), qt.Contains, `create table "post_tags"`)
	c.Assert(joinLower(pg), qt.Contains, `primary key ("nodeid", "position")`)
	c.Assert(joinLower(lite), qt.Contains, `primary key ("nodeid", "position")`)
}

func TestRender_InlineFKAddsColumnAndConstraint(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model A {
  id Int @id
  b B @relation(references: [id])
}
model B {
  id Int @id
  a A
}
`)
	pg, _, lite := renderAll(t, out)

	c.Assert(joinLower(pg), qt.Contains, `alter table "a" add column "b" integer not null`)
	c.Assert(joinLower(pg), qt.Contains, `add constraint "fk_a_b" foreign key ("b") references "b" ("id") on delete no action`)

	// SQLite cannot add a constraint to an existing table; the new column
	// carries its REFERENCES clause inline instead.
	c.Assert(joinLower(lite), qt.Contains, `add column "b" integer not null references "b" ("id") on delete no action`)
}

func TestRender_IDTypeChangeReemitsForeignKey(t *testing.T) {
	c := qt.New(t)
	prev := buildIDM(t, `
model A { id Int @id b B @relation(references: [id]) }
model B { id Int @id a A }
`)
	next := buildIDM(t, `
model A { id Int @id b B @relation(references: [id]) }
model B { id String @id @default(cuid()) a A }
`)
	plan := inferrer.Infer(prev, next)
	nodes := planner.Lower(plan)
	pg, err := renderer.Render(nodes, postgres.New())
	c.Assert(err, qt.IsNil)
	joined := joinLower(pg)

	c.Assert(joined, qt.Contains, `drop constraint "fk_a_b"`)
	c.Assert(joined, qt.Contains, `alter table "b" alter column "id" type text`)
	c.Assert(joined, qt.Contains, `alter table "a" alter column "b" type text`)
	c.Assert(joined, qt.Contains, `add constraint "fk_a_b" foreign key ("b") references "b" ("id")`)

	// The constraint drop must precede the type changes, which must precede
	// the constraint re-add.
	drop := strings.Index(joined, `drop constraint "fk_a_b"`)
	alter := strings.Index(joined, `alter column "b" type text`)
	readd := strings.Index(joined, `add constraint "fk_a_b"`)
	c.Assert(drop < alter, qt.IsTrue)
	c.Assert(alter < readd, qt.IsTrue)
}

func TestRender_MySQLSkipsNativeEnum(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model Test {
  id String @id @default(cuid())
  status MyEnum
}
enum MyEnum { A B }
`)
	_, my, _ := renderAll(t, out)
	for _, stmt := range my {
		c.Assert(strings.Contains(strings.ToUpper(stmt), "CREATE TYPE"), qt.IsFalse)
	}
}

func TestRender_SQLiteRejectsColumnTypeChange(t *testing.T) {
	c := qt.New(t)
	prev := buildIDM(t, `
model A { id Int @id b B @relation(references: [id]) }
model B { id Int @id a A }
`)
	next := buildIDM(t, `
model A { id Int @id b B @relation(references: [id]) }
model B { id String @id @default(cuid()) a A }
`)
	plan := inferrer.Infer(prev, next)
	nodes := planner.Lower(plan)

	_, err := renderer.Render(nodes, sqlite.New())
	c.Assert(err, qt.ErrorMatches, ".*rebuild.*")
}

func TestRender_InlineFKWithMap(t *testing.T) {
	c := qt.New(t)
	out := buildIDM(t, `
model A {
  id Int @id
  b B @relation(references: [id]) @map(name: "b_column")
}
model B {
  id Int @id
  a A
}
`)
	pg, _, _ := renderAll(t, out)
	joined := joinLower(pg)
	c.Assert(joined, qt.Contains, `"b_column"`)
}
