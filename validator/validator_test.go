package validator_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/parser"
	"github.com/kodeflow/datamodel/validator"
)

func build(t *testing.T, src string) (*ast.Datamodel, *dml.Datamodel) {
	t.Helper()
	astSchema, err := parser.Parse(src)
	qt.Assert(t, err, qt.IsNil)
	dmSchema, err := dml.Build(dml.NewRegistry(), astSchema)
	qt.Assert(t, err, qt.IsNil)
	return astSchema, dmSchema
}

func TestValidate_ScalarOnlyModel(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model Test {
  id String @id @default(cuid())
  int Int
  float Float
  boolean Boolean
  string String
  dateTime DateTime
  enum MyEnum
}
enum MyEnum {
  A
  B
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.IsNil)

	model := dmSchema.FindModel("Test")
	c.Assert(model, qt.IsNotNil)
	for _, f := range model.Fields {
		c.Assert(f.Arity, qt.Equals, dml.Required)
	}
}

func TestValidate_OptionalField(t *testing.T) {
	c := qt.New(t)
	_, dmSchema := build(t, `
model Test {
  id String @id @default(cuid())
  field String?
}
`)
	model := dmSchema.FindModel("Test")
	f := model.FieldNamed("field")
	c.Assert(f.Arity, qt.Equals, dml.Optional)
}

func TestValidate_AmbiguousRelation(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model Blog {
  id Int @id
  post1 Post
  post2 Post
}
model Post {
  id Int @id
  blog Blog
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.ErrorMatches, ".*Ambiguous relation detected.*")
}

func TestValidate_InvalidIDShape(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model X {
  id Float @id
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.ErrorMatches, ".*Invalid ID field.*")
}

func TestValidate_EmbeddedBackRelation(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model Parent {
  id Int @id
  children Child[]
}
model Child {
  id Int @id
  parent Parent
  @@embedded
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.ErrorMatches, ".*Embedded models cannot have back relation fields.*")
}

func TestValidate_AccumulatesAcrossModels(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model A {
  id Float @id
}
model B {
  id Float @id
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, "(?s).*Invalid ID field.*Invalid ID field.*")
}

func TestValidate_CaseInsensitivePhysicalNameCollision(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model Order {
  id Int @id
}
model order {
  id Int @id
  @@map("ORDER")
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.ErrorMatches, ".*collides case-insensitively.*")
}

func TestValidate_DistinctPhysicalNamesOK(t *testing.T) {
	c := qt.New(t)
	astSchema, dmSchema := build(t, `
model Order {
  id Int @id
}
model Invoice {
  id Int @id
}
`)
	err := validator.New().Validate(astSchema, dmSchema)
	c.Assert(err, qt.IsNil)
}
