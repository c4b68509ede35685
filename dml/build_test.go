package dml_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/parser"
)

func parseAndBuild(t *testing.T, src string) *dml.Datamodel {
	t.Helper()
	astSchema, err := parser.Parse(src)
	qt.Assert(t, err, qt.IsNil)
	dmSchema, err := dml.Build(dml.NewRegistry(), astSchema)
	qt.Assert(t, err, qt.IsNil)
	return dmSchema
}

func TestBuild_RelationNameAutoDerived(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model A {
  id Int @id
  bs B[]
}
model B {
  id Int @id
  as A[]
}
`)
	a := dmSchema.FindModel("A")
	rel := a.FieldNamed("bs").FieldType.Relation()
	c.Assert(rel.Name, qt.Equals, "AToB")

	b := dmSchema.FindModel("B")
	relB := b.FieldNamed("as").FieldType.Relation()
	c.Assert(relB.Name, qt.Equals, "AToB")
}

func TestBuild_ExplicitRelationNameWins(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model Group {
  id String @id @default(cuid())
  parent Group? @relation(name: "ChildGroups")
  childGroups Group[] @relation(name: "ChildGroups")
}
`)
	g := dmSchema.FindModel("Group")
	c.Assert(g.FieldNamed("parent").FieldType.Relation().Name, qt.Equals, "ChildGroups")
	c.Assert(g.FieldNamed("childGroups").FieldType.Relation().Name, qt.Equals, "ChildGroups")
}

func TestBuild_RelationReferencesAndMap(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model A {
  id Int @id
  b B @relation(references: [id]) @map(name: "b_column")
}
model B {
  id Int @id
  a A
}
`)
	f := dmSchema.FindModel("A").FieldNamed("b")
	c.Assert(f.PhysicalName(), qt.Equals, "b_column")
	c.Assert(f.FieldType.Relation().ToFields, qt.DeepEquals, []string{"id"})
}

func TestBuild_EmbeddedFlag(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model Child {
  id Int @id
  @@embedded
}
`)
	c.Assert(dmSchema.FindModel("Child").IsEmbedded, qt.IsTrue)
}

func TestDirectiveRoundTrip_FieldDirectives(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model User {
  id    String @id @default(cuid())
  email String @unique @map(name: "email_address")
  posts Post[] @relation(name: "authored")
}
model Post {
  id     Int  @id
  author User @relation(name: "authored", references: [id])
}
`)
	reg := dml.NewRegistry()
	user := dmSchema.FindModel("User")

	serialize := func(directive string, f *dml.Field) *ast.Directive {
		impl, ok := reg.Field(directive)
		c.Assert(ok, qt.IsTrue)
		d, err := impl.Serialize(f, dmSchema)
		c.Assert(err, qt.IsNil)
		return d
	}

	id := serialize("id", user.FieldNamed("id"))
	c.Assert(id.Name, qt.Equals, "id")

	def := serialize("default", user.FieldNamed("id"))
	c.Assert(def.Args[0].Value.Kind, qt.Equals, ast.ValueCall)
	c.Assert(def.Args[0].Value.Str, qt.Equals, "cuid")

	uniq := serialize("unique", user.FieldNamed("email"))
	c.Assert(uniq.Name, qt.Equals, "unique")

	mapped := serialize("map", user.FieldNamed("email"))
	c.Assert(mapped.Args[0].Value.Str, qt.Equals, "email_address")

	rel := serialize("relation", dmSchema.FindModel("Post").FieldNamed("author"))
	c.Assert(rel.ArgNamed("name").Str, qt.Equals, "authored")
	c.Assert(rel.ArgNamed("references").Elems[0].Str, qt.Equals, "id")

	// A field that never carried the state serializes to nothing.
	none := func(directive string, f *dml.Field) {
		impl, _ := reg.Field(directive)
		d, err := impl.Serialize(f, dmSchema)
		c.Assert(err, qt.IsNil)
		c.Assert(d, qt.IsNil)
	}
	none("id", user.FieldNamed("email"))
	none("unique", user.FieldNamed("id"))
}

type textDirective struct{}

func (textDirective) Name() string { return "text" }

func (textDirective) ValidateAndApply(_ dml.Args, f *dml.Field) error {
	f.DatabaseName = f.Name + "_text"
	return nil
}

func (textDirective) Serialize(_ *dml.Field, _ *dml.Datamodel) (*ast.Directive, error) {
	return nil, nil
}

func TestRegistry_SourceNamespacedDirective(t *testing.T) {
	c := qt.New(t)
	astSchema, err := parser.Parse(`
source pg {
  provider = "postgresql"
  url = "postgres://localhost/app"
}
model User {
  id   Int    @id
  name String @pg.text
}
`)
	c.Assert(err, qt.IsNil)

	reg := dml.NewRegistry()
	reg.RegisterSourceField("pg", textDirective{})

	dmSchema, err := dml.Build(reg, astSchema)
	c.Assert(err, qt.IsNil)
	c.Assert(dmSchema.FindModel("User").FieldNamed("name").DatabaseName, qt.Equals, "name_text")
}

func TestDirectiveRoundTrip_Embedded(t *testing.T) {
	c := qt.New(t)
	dmSchema := parseAndBuild(t, `
model Child {
  id Int @id
  @@embedded
}
`)
	reg := dml.NewRegistry()
	impl, ok := reg.Model("embedded")
	c.Assert(ok, qt.IsTrue)

	model := dmSchema.FindModel("Child")
	d, err := impl.Serialize(model, dmSchema)
	c.Assert(err, qt.IsNil)
	c.Assert(d.Name, qt.Equals, "embedded")
}
