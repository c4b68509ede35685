// Package ast defines the syntax tree produced by the datamodel parser.
//
// Values here are immutable once the parser returns them: nothing downstream
// (directive lowering, validation, conversion) ever mutates an AST node. Every
// node that corresponds to a concrete piece of source text carries a Span so
// diagnostics can point back at it.
package ast

// Span locates a syntactic construct in the original source text by byte
// offset. Start is inclusive, End is exclusive.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a Span from a start/end byte offset pair.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Datamodel is the root of a parsed source file: an ordered list of
// top-level declarations (models, enums, type aliases, sources, generators).
type Datamodel struct {
	Models     []*Model
	Enums      []*Enum
	Types      []*TypeAlias
	Sources    []*SourceConfig
	Generators []*GeneratorConfig
}

// FindModel returns the model with the given name, or nil if no such model
// was declared. Used by the validator to resolve spans for diagnostics.
func (d *Datamodel) FindModel(name string) *Model {
	for _, m := range d.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// FindField returns the field named fieldName on the model named modelName,
// or nil if either does not exist.
func (d *Datamodel) FindField(modelName, fieldName string) *Field {
	m := d.FindModel(modelName)
	if m == nil {
		return nil
	}
	for _, f := range m.Fields {
		if f.Name == fieldName {
			return f
		}
	}
	return nil
}

// FindEnum returns the enum with the given name, or nil.
func (d *Datamodel) FindEnum(name string) *Enum {
	for _, e := range d.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Arity describes how many values a field may hold.
type Arity int

const (
	Required Arity = iota
	Optional
	List
)

func (a Arity) String() string {
	switch a {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// FieldTypeRef is the named type reference a field carries before it has
// been resolved to a ScalarType, enum, or relation target by DML lowering.
type FieldTypeRef struct {
	Name  string
	Arity Arity
}

// Field is a single field declaration inside a model block.
type Field struct {
	Name       string
	Type       FieldTypeRef
	Default    *ValueExpr
	Directives []*Directive
	Span       Span
}

// DirectiveNamed returns the first directive on the field with the given
// name, or nil.
func (f *Field) DirectiveNamed(name string) *Directive {
	for _, d := range f.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Model is a `model <Name> { ... }` declaration.
type Model struct {
	Name       string
	Fields     []*Field
	Directives []*Directive
	Span       Span
}

// DirectiveNamed returns the first model-level directive with the given
// name, or nil.
func (m *Model) DirectiveNamed(name string) *Directive {
	for _, d := range m.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Enum is an `enum <Name> { ... }` declaration.
type Enum struct {
	Name   string
	Values []string
	Span   Span
}

// TypeAlias is a `type <Name> = ...` declaration. The core does not resolve
// these; they are carried through so the round-trip/serialization property
// has somewhere to put them.
type TypeAlias struct {
	Name   string
	Target string
	Span   Span
}

// SourceConfig is a `source <Name> { ... }` block, e.g. the built-in `db`
// datasource naming a provider and connection URL.
type SourceConfig struct {
	Name string
	Args []*Arg
	Span Span
}

// ArgNamed returns the value of the config key with the given name, or nil.
func (s *SourceConfig) ArgNamed(name string) *ValueExpr {
	for _, a := range s.Args {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}

// GeneratorConfig is a `generator <Name> { ... }` block.
type GeneratorConfig struct {
	Name string
	Args []*Arg
	Span Span
}

// Directive is an `@name(args)` (field-level) or `@@name(args)`
// (model-level) annotation.
type Directive struct {
	Name string
	Args []*Arg
	Span Span
}

// ArgNamed returns the value of the first named argument with the given
// name, or nil if absent.
func (d *Directive) ArgNamed(name string) *ValueExpr {
	for _, a := range d.Args {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}

// Positional returns the positional arguments, i.e. those without a Name.
func (d *Directive) Positional() []*ValueExpr {
	var out []*ValueExpr
	for _, a := range d.Args {
		if a.Name == "" {
			out = append(out, a.Value)
		}
	}
	return out
}

// Arg is a single directive argument, either positional (Name == "") or
// named (`name: value`).
type Arg struct {
	Name  string
	Value *ValueExpr
	Span  Span
}

// ValueKind discriminates the variants of ValueExpr.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueCall
	ValueArray
	ValueIdent
)

// ValueExpr is a literal value, function call, array, or bare identifier
// appearing in directive argument position or as a field default.
type ValueExpr struct {
	Kind ValueKind

	Str   string  // ValueString, ValueIdent, the source text of a ValueFloat, and the callee name for ValueCall
	Int   int64   // ValueInt
	Float float64 // ValueFloat
	Bool  bool    // ValueBool

	CallArgs []*ValueExpr // ValueCall
	Elems    []*ValueExpr // ValueArray

	Span Span
}

// IsCall reports whether the expression is a function call with the given
// name, e.g. IsCall("cuid") for `@default(cuid())`.
func (v *ValueExpr) IsCall(name string) bool {
	return v != nil && v.Kind == ValueCall && v.Str == name && len(v.CallArgs) == 0
}
