package inferrer_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/parser"
)

func build(t *testing.T, src string) *idm.InternalDataModel {
	t.Helper()
	astSchema, err := parser.Parse(src)
	qt.Assert(t, err, qt.IsNil)
	dmSchema, err := dml.Build(dml.NewRegistry(), astSchema)
	qt.Assert(t, err, qt.IsNil)
	out, err := idm.Build(dmSchema)
	qt.Assert(t, err, qt.IsNil)
	return out
}

func TestInfer_InitialMigrationCreatesEverything(t *testing.T) {
	c := qt.New(t)
	next := build(t, `
model User {
  id    Int    @id
  email String
}
`)
	plan := inferrer.Infer(nil, next)
	c.Assert(plan.IsEmpty(), qt.IsFalse)

	var sawCreate bool
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepCreateTable && s.TableName == "User" {
			sawCreate = true
		}
	}
	c.Assert(sawCreate, qt.IsTrue)
}

func TestInfer_NoChangeIsEmptyPlan(t *testing.T) {
	c := qt.New(t)
	schema := build(t, `
model User {
  id    Int    @id
  email String
}
`)
	plan := inferrer.Infer(schema, schema)
	c.Assert(plan.IsEmpty(), qt.IsTrue)
}

func TestInfer_IdenticalEnumsProduceNoStep(t *testing.T) {
	c := qt.New(t)
	src := `
enum Role {
  ADMIN
  USER
}
model User {
  id   Int  @id
  role Role
}
`
	prev := build(t, src)
	next := build(t, src)
	plan := inferrer.Infer(prev, next)
	c.Assert(plan.IsEmpty(), qt.IsTrue)
}

func TestInfer_ColumnRenameViaMapOnly(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model User {
  id   Int    @id
  name String
}
`)
	next := build(t, `
model User {
  id       Int    @id
  name     String @map(name: "full_name")
}
`)
	plan := inferrer.Infer(prev, next)
	var found bool
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepRenameColumn && s.ColumnName == "name" && s.NewColumnName == "full_name" {
			found = true
		}
	}
	c.Assert(found, qt.IsTrue)
}

func TestInfer_IDTypeChangeCascadesToInlineFK(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model User {
  id    Int    @id
  posts Post[]
}
model Post {
  id     Int  @id
  author User @relation(references: [id])
}
`)
	next := build(t, `
model User {
  id    String @id @default(uuid())
  posts Post[]
}
model Post {
  id     Int    @id
  author User   @relation(references: [id])
}
`)
	plan := inferrer.Infer(prev, next)

	var alterStep *inferrer.MigrationStep
	for i := range plan.Steps {
		if plan.Steps[i].Kind == inferrer.StepAlterColumnType && plan.Steps[i].TableName == "User" {
			alterStep = &plan.Steps[i]
		}
	}
	c.Assert(alterStep, qt.Not(qt.IsNil))
	c.Assert(alterStep.CascadeFKs, qt.HasLen, 1)
	c.Assert(alterStep.CascadeFKs[0].Table, qt.Equals, "Post")
}

func TestInfer_AddAndDropModel(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model Old {
  id Int @id
}
`)
	next := build(t, `
model New {
  id Int @id
}
`)
	plan := inferrer.Infer(prev, next)

	var sawDrop, sawCreate bool
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepDropTable && s.TableName == "Old" {
			sawDrop = true
		}
		if s.Kind == inferrer.StepCreateTable && s.TableName == "New" {
			sawCreate = true
		}
	}
	c.Assert(sawDrop, qt.IsTrue)
	c.Assert(sawCreate, qt.IsTrue)
}

func TestInfer_RelationManifestationChangeDropsAndRecreates(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model A {
  id Int @id
  bs B[] @relation(name: "rel")
}
model B {
  id Int @id
  as A[] @relation(name: "rel")
}
`)
	next := build(t, `
model A {
  id Int @id
  bs B[] @relation(name: "rel", references: [id])
}
model B {
  id Int @id
  a  A   @relation(name: "rel", references: [id])
}
`)
	plan := inferrer.Infer(prev, next)

	var sawDropJoin, sawAddFK bool
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepDropJoinTable {
			sawDropJoin = true
		}
		if s.Kind == inferrer.StepAddForeignKey {
			sawAddFK = true
		}
	}
	c.Assert(sawDropJoin, qt.IsTrue)
	c.Assert(sawAddFK, qt.IsTrue)
}

func TestInfer_InlineFKCarriesReferencedIDType(t *testing.T) {
	c := qt.New(t)
	next := build(t, `
model A {
  id Int @id
  b B @relation(references: [id])
}
model B {
  id Int @id
  a A
}
`)
	plan := inferrer.Infer(nil, next)

	var fkStep *inferrer.MigrationStep
	for i := range plan.Steps {
		if plan.Steps[i].Kind == inferrer.StepAddForeignKey {
			fkStep = &plan.Steps[i]
		}
	}
	c.Assert(fkStep, qt.Not(qt.IsNil))
	c.Assert(fkStep.FK.Table, qt.Equals, "A")
	c.Assert(fkStep.FK.Column, qt.Equals, "b")
	c.Assert(fkStep.FK.RefTable, qt.Equals, "B")
	c.Assert(fkStep.FK.RefColumn, qt.Equals, "id")
	c.Assert(fkStep.FK.ColumnType.Kind, qt.Equals, idm.TIInt)
	c.Assert(fkStep.FK.ColumnRequired, qt.IsTrue)
	c.Assert(fkStep.FK.WithColumn, qt.IsTrue)
}

func TestInfer_ScalarListNodeIDFollowsIDTypeChange(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model Post {
  id Int @id
  tags String[]
}
`)
	next := build(t, `
model Post {
  id String @id @default(cuid())
  tags String[]
}
`)
	plan := inferrer.Infer(prev, next)

	var found bool
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepAlterColumnType && s.TableName == "Post_tags" && s.Column.Name == "nodeId" {
			found = true
			c.Assert(s.Column.Type.Kind, qt.Equals, idm.TIGraphQLID)
		}
	}
	c.Assert(found, qt.IsTrue)
}

func TestInfer_InitialMigrationCreatesUniqueIndexes(t *testing.T) {
	c := qt.New(t)
	next := build(t, `
model User {
  id    Int    @id
  email String @unique
  first String
  last  String
  @@unique([first, last])
}
`)
	plan := inferrer.Infer(nil, next)

	var names []string
	for _, s := range plan.Steps {
		if s.Kind == inferrer.StepAddUniqueIndex {
			names = append(names, s.IndexName)
		}
	}
	c.Assert(names, qt.DeepEquals, []string{"uq_User_email", "uq_User_first_last"})
}

func TestInfer_UniqueIndexAddAndDrop(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model User {
  id    Int    @id
  email String
  name  String @unique
}
`)
	next := build(t, `
model User {
  id    Int    @id
  email String @unique
  name  String
}
`)
	plan := inferrer.Infer(prev, next)

	var added, dropped string
	for _, s := range plan.Steps {
		switch s.Kind {
		case inferrer.StepAddUniqueIndex:
			added = s.IndexName
		case inferrer.StepDropUniqueIndex:
			dropped = s.IndexName
		}
	}
	c.Assert(added, qt.Equals, "uq_User_email")
	c.Assert(dropped, qt.Equals, "uq_User_name")
}

func TestInfer_RelationRenameRenamesJoinTable(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model A {
  id Int @id
  bs B[] @relation(name: "old_name")
}
model B {
  id Int @id
  as A[] @relation(name: "old_name")
}
`)
	next := build(t, `
model A {
  id Int @id
  bs B[] @relation(name: "new_name")
}
model B {
  id Int @id
  as A[] @relation(name: "new_name")
}
`)
	plan := inferrer.Infer(prev, next)
	c.Assert(plan.Steps, qt.HasLen, 1)
	c.Assert(plan.Steps[0].Kind, qt.Equals, inferrer.StepRenameJoinTable)
	c.Assert(plan.Steps[0].OldJoinTable, qt.Equals, "_old_name")
	c.Assert(plan.Steps[0].JoinTable, qt.Equals, "_new_name")
}

func TestInfer_IsDeterministicAcrossRuns(t *testing.T) {
	c := qt.New(t)
	prev := build(t, `
model A { id Int @id }
`)
	next := build(t, `
model A { id Int @id name String bs B[] }
model B { id Int @id a A @relation(references: [id]) }
`)
	p1 := inferrer.Infer(prev, next)
	p2 := inferrer.Infer(prev, next)
	c.Assert(p1.Steps, qt.DeepEquals, p2.Steps)
}
