package idm_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
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

func TestConvert_ManyToManyAuto(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model A {
  id Int @id
  bs B[]
}
model B {
  id Int @id
  as A[]
}
`)
	c.Assert(out.Relations, qt.HasLen, 1)
	rel := out.Relations[0]
	c.Assert(rel.Name, qt.Equals, "AToB")
	c.Assert(rel.Manifestation.Kind, qt.Equals, idm.ManifestationRelationTable)
	c.Assert(rel.Manifestation.Table, qt.Equals, "_AToB")
	c.Assert(rel.Manifestation.ModelAColumn, qt.Equals, "A")
	c.Assert(rel.Manifestation.ModelBColumn, qt.Equals, "B")
}

func TestConvert_NamedManyToMany(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model A {
  id Int @id
  bs B[] @relation(name: "my_relation")
}
model B {
  id Int @id
  as A[] @relation(name: "my_relation")
}
`)
	c.Assert(out.Relations, qt.HasLen, 1)
	c.Assert(out.Relations[0].Manifestation.Table, qt.Equals, "_my_relation")
}

func TestConvert_InlineFKWithMap(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model A {
  id Int @id
  b B @relation(references: [id]) @map(name: "b_column")
}
model B {
  id Int @id
  a A
}
`)
	c.Assert(out.Relations, qt.HasLen, 1)
	m := out.Relations[0].Manifestation
	c.Assert(m.Kind, qt.Equals, idm.ManifestationInline)
	c.Assert(m.InTableOfModelName, qt.Equals, "A")
	c.Assert(m.ReferencingColumn, qt.Equals, "b_column")
}

func TestConvert_InlineFKRequiredAndOnDelete(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model Item {
  id    Int   @id
  order Order @relation(references: [id], onDelete: Cascade)
}
model Order {
  id    Int    @id
  items Item[]
}
`)
	c.Assert(out.Relations, qt.HasLen, 1)
	m := out.Relations[0].Manifestation
	c.Assert(m.Kind, qt.Equals, idm.ManifestationInline)
	c.Assert(m.InTableOfModelName, qt.Equals, "Item")
	c.Assert(m.Required, qt.IsTrue)
	c.Assert(m.OnDelete, qt.Equals, dml.Cascade)
}

func TestConvert_IDStringStrategies(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model A {
  id String @id @default(cuid())
}
model B {
  id String @id @default(uuid())
}
model C {
  id Int @id
}
`)
	a := out.ModelNamed("A").IDField()
	c.Assert(a.Type.Kind, qt.Equals, idm.TIGraphQLID)

	b := out.ModelNamed("B").IDField()
	c.Assert(b.Type.Kind, qt.Equals, idm.TIUUID)

	cm := out.ModelNamed("C").IDField()
	c.Assert(cm.Type.Kind, qt.Equals, idm.TIInt)
	c.Assert(cm.Behaviour.IDStrat, qt.Equals, idm.IDStrategyAuto)
}

func TestConvert_ScalarListTable(t *testing.T) {
	c := qt.New(t)
	out := build(t, `
model Post {
  id Int @id
  tags String[]
}
`)
	post := out.ModelNamed("Post")
	c.Assert(post.ScalarListFields, qt.HasLen, 1)
	table := post.ScalarListFields[0]
	c.Assert(table.Name, qt.Equals, "Post_tags")
	c.Assert(table.NodeIDType.Kind, qt.Equals, idm.TIInt)
	c.Assert(table.ValueType.Kind, qt.Equals, idm.TIString)
}
