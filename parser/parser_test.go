package parser_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/parser"
)

func TestParse_ScalarModel(t *testing.T) {
	c := qt.New(t)
	dm, err := parser.Parse(`
model User {
  id Int @id
  name String
}
`)
	c.Assert(err, qt.IsNil)
	c.Assert(dm.Models, qt.HasLen, 1)
	c.Assert(dm.Models[0].Name, qt.Equals, "User")
	c.Assert(dm.Models[0].Fields, qt.HasLen, 2)
}

func TestParse_EnumAndDirectives(t *testing.T) {
	c := qt.New(t)
	dm, err := parser.Parse(`
model Post {
  id String @id @default(cuid())
  status Status
  tags String[]
  @@map(name: "posts")
}
enum Status {
  Draft
  Published
}
`)
	c.Assert(err, qt.IsNil)
	model := dm.Models[0]
	c.Assert(model.DirectiveNamed("map"), qt.IsNotNil)
	c.Assert(model.Fields[2].Type.Arity, qt.Equals, ast.List)
}

func TestParse_LegacyListSyntax(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse(`
model User {
  id [Int] @id
}`)
	c.Assert(err, qt.ErrorMatches, "To specify a list.*")
}

func TestParse_LegacyColonSyntax(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse(`
model User {
  id: Int @id
}`)
	c.Assert(err, qt.ErrorMatches, "Field declarations don't require.*")
}

func TestParse_LegacyBangSyntax(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse(`
model User {
  id Int! @id
}`)
	c.Assert(err, qt.ErrorMatches, "Fields are required by default.*")
}

func TestParse_LegacyTypeKeyword(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse(`
type User {
  id Int @id
}`)
	c.Assert(err, qt.ErrorMatches, "Model declarations have to be indicated.*")
}

func TestParse_TypeAliasStillAccepted(t *testing.T) {
	c := qt.New(t)
	dm, err := parser.Parse(`type MyID = String`)
	c.Assert(err, qt.IsNil)
	c.Assert(dm.Types, qt.HasLen, 1)
}

func TestParse_MissingModelKeyword(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse(`
User {
  id Int @id
}
`)
	c.Assert(err, qt.ErrorMatches, "expected one of.*")
}
