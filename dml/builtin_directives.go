package dml

import (
	"github.com/kodeflow/datamodel/ast"
)

// The directives below follow the capability contract `{Name,
// ValidateAndApply, Serialize}` described for the original `@embedded`
// directive: ValidateAndApply mutates the DML entity from parsed args,
// Serialize is its inverse, emitting an AST directive iff the entity
// currently carries the associated state. Round-tripping a directive
// through ValidateAndApply then Serialize must reproduce an equivalent AST
// node.

// --- model-level ---

type embeddedDirective struct{}

func (embeddedDirective) Name() string { return "embedded" }

func (embeddedDirective) ValidateAndApply(_ Args, m *Model) error {
	m.IsEmbedded = true
	return nil
}

func (embeddedDirective) Serialize(m *Model, _ *Datamodel) (*ast.Directive, error) {
	if !m.IsEmbedded {
		return nil, nil
	}
	return &ast.Directive{Name: "embedded"}, nil
}

type modelMapDirective struct{}

func (modelMapDirective) Name() string { return "map" }

func (modelMapDirective) ValidateAndApply(args Args, m *Model) error {
	v, err := args.RequireNamedOrPositional("name", 0)
	if err != nil {
		return &DirectiveValidationError{DirectiveName: "map", Message: err.Error(), Span: args.Directive.Span}
	}
	m.DatabaseName = v.Str
	return nil
}

func (modelMapDirective) Serialize(m *Model, _ *Datamodel) (*ast.Directive, error) {
	if m.DatabaseName == "" {
		return nil, nil
	}
	return &ast.Directive{
		Name: "map",
		Args: []*ast.Arg{{Value: &ast.ValueExpr{Kind: ast.ValueString, Str: m.DatabaseName}}},
	}, nil
}

type modelUniqueDirective struct{}

func (modelUniqueDirective) Name() string { return "unique" }

func (modelUniqueDirective) ValidateAndApply(args Args, m *Model) error {
	v, err := args.RequireNamedOrPositional("fields", 0)
	if err != nil {
		return &DirectiveValidationError{DirectiveName: "unique", Message: err.Error(), Span: args.Directive.Span}
	}
	var group []string
	for _, e := range v.Elems {
		group = append(group, e.Str)
	}
	m.UniqueGroups = append(m.UniqueGroups, group)
	return nil
}

func (modelUniqueDirective) Serialize(m *Model, _ *Datamodel) (*ast.Directive, error) {
	if len(m.UniqueGroups) == 0 {
		return nil, nil
	}
	last := m.UniqueGroups[len(m.UniqueGroups)-1]
	elems := make([]*ast.ValueExpr, len(last))
	for i, f := range last {
		elems[i] = &ast.ValueExpr{Kind: ast.ValueIdent, Str: f}
	}
	return &ast.Directive{
		Name: "unique",
		Args: []*ast.Arg{{Value: &ast.ValueExpr{Kind: ast.ValueArray, Elems: elems}}},
	}, nil
}

func builtinModelDirectives() []ModelDirective {
	return []ModelDirective{embeddedDirective{}, modelMapDirective{}, modelUniqueDirective{}}
}

// --- field-level ---

type idDirective struct{}

func (idDirective) Name() string { return "id" }

func (idDirective) ValidateAndApply(_ Args, f *Field) error {
	f.IsID = true
	return nil
}

func (idDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if !f.IsID {
		return nil, nil
	}
	return &ast.Directive{Name: "id"}, nil
}

type uniqueDirective struct{}

func (uniqueDirective) Name() string { return "unique" }

func (uniqueDirective) ValidateAndApply(_ Args, f *Field) error {
	f.IsUnique = true
	return nil
}

func (uniqueDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if !f.IsUnique {
		return nil, nil
	}
	return &ast.Directive{Name: "unique"}, nil
}

type updatedAtDirective struct{}

func (updatedAtDirective) Name() string { return "updatedAt" }

func (updatedAtDirective) ValidateAndApply(_ Args, f *Field) error {
	f.IsUpdatedAt = true
	f.IsGenerated = true
	return nil
}

func (updatedAtDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if !f.IsUpdatedAt {
		return nil, nil
	}
	return &ast.Directive{Name: "updatedAt"}, nil
}

type createdAtDirective struct{}

func (createdAtDirective) Name() string { return "createdAt" }

func (createdAtDirective) ValidateAndApply(_ Args, f *Field) error {
	f.IsCreatedAt = true
	f.IsGenerated = true
	return nil
}

func (createdAtDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if !f.IsCreatedAt {
		return nil, nil
	}
	return &ast.Directive{Name: "createdAt"}, nil
}

type fieldMapDirective struct{}

func (fieldMapDirective) Name() string { return "map" }

func (fieldMapDirective) ValidateAndApply(args Args, f *Field) error {
	v, err := args.RequireNamedOrPositional("name", 0)
	if err != nil {
		return &DirectiveValidationError{DirectiveName: "map", Message: err.Error(), Span: args.Directive.Span}
	}
	f.DatabaseName = v.Str
	return nil
}

func (fieldMapDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if f.DatabaseName == "" {
		return nil, nil
	}
	return &ast.Directive{
		Name: "map",
		Args: []*ast.Arg{{Value: &ast.ValueExpr{Kind: ast.ValueString, Str: f.DatabaseName}}},
	}, nil
}

type defaultDirective struct{}

func (defaultDirective) Name() string { return "default" }

func (defaultDirective) ValidateAndApply(args Args, f *Field) error {
	v, err := args.RequireNamedOrPositional("value", 0)
	if err != nil {
		return &DirectiveValidationError{DirectiveName: "default", Message: err.Error(), Span: args.Directive.Span}
	}
	if v.Kind == ast.ValueCall {
		f.Default = &DefaultValue{Kind: DefaultExpr, Expr: v.Str}
		return nil
	}
	f.Default = &DefaultValue{Kind: DefaultLiteral, Value: literalGoValue(v)}
	return nil
}

func literalGoValue(v *ast.ValueExpr) any {
	switch v.Kind {
	case ast.ValueString, ast.ValueIdent:
		return v.Str
	case ast.ValueInt:
		return v.Int
	case ast.ValueFloat:
		return v.Str
	case ast.ValueBool:
		return v.Bool
	default:
		return nil
	}
}

func (defaultDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	if f.Default == nil {
		return nil, nil
	}
	var val *ast.ValueExpr
	if f.Default.Kind == DefaultExpr {
		val = &ast.ValueExpr{Kind: ast.ValueCall, Str: f.Default.Expr}
	} else {
		val = literalValueExpr(f.Default.Value)
	}
	return &ast.Directive{Name: "default", Args: []*ast.Arg{{Value: val}}}, nil
}

func literalValueExpr(v any) *ast.ValueExpr {
	switch t := v.(type) {
	case string:
		return &ast.ValueExpr{Kind: ast.ValueString, Str: t}
	case int64:
		return &ast.ValueExpr{Kind: ast.ValueInt, Int: t}
	case bool:
		return &ast.ValueExpr{Kind: ast.ValueBool, Bool: t}
	default:
		return &ast.ValueExpr{Kind: ast.ValueString}
	}
}

type relationDirective struct{}

func (relationDirective) Name() string { return "relation" }

func (relationDirective) ValidateAndApply(args Args, f *Field) error {
	rel := f.FieldType.Relation()
	if rel == nil {
		return &DirectiveValidationError{DirectiveName: "relation", Message: "@relation used on a non-relation field", Span: args.Directive.Span}
	}
	if v := args.Named("name"); v != nil {
		rel.Name = v.Str
	} else if pos := args.Positional(); len(pos) > 0 {
		rel.Name = pos[0].Str
	}
	if v := args.Named("references"); v != nil {
		for _, e := range v.Elems {
			rel.ToFields = append(rel.ToFields, e.Str)
		}
	}
	if v := args.Named("onDelete"); v != nil {
		switch v.Str {
		case "Cascade":
			rel.OnDelete = Cascade
		case "SetNull":
			rel.OnDelete = SetNull
		case "Restrict":
			rel.OnDelete = Restrict
		default:
			rel.OnDelete = NoAction
		}
	}
	return nil
}

func (relationDirective) Serialize(f *Field, _ *Datamodel) (*ast.Directive, error) {
	rel := f.FieldType.Relation()
	if rel == nil {
		return nil, nil
	}
	d := &ast.Directive{Name: "relation"}
	if rel.Name != "" {
		d.Args = append(d.Args, &ast.Arg{Name: "name", Value: &ast.ValueExpr{Kind: ast.ValueString, Str: rel.Name}})
	}
	if len(rel.ToFields) > 0 {
		elems := make([]*ast.ValueExpr, len(rel.ToFields))
		for i, rf := range rel.ToFields {
			elems[i] = &ast.ValueExpr{Kind: ast.ValueIdent, Str: rf}
		}
		d.Args = append(d.Args, &ast.Arg{Name: "references", Value: &ast.ValueExpr{Kind: ast.ValueArray, Elems: elems}})
	}
	var onDelete string
	switch rel.OnDelete {
	case Cascade:
		onDelete = "Cascade"
	case SetNull:
		onDelete = "SetNull"
	case Restrict:
		onDelete = "Restrict"
	}
	if onDelete != "" {
		d.Args = append(d.Args, &ast.Arg{Name: "onDelete", Value: &ast.ValueExpr{Kind: ast.ValueIdent, Str: onDelete}})
	}
	return d, nil
}

func builtinFieldDirectives() []FieldDirective {
	return []FieldDirective{
		idDirective{}, uniqueDirective{}, updatedAtDirective{}, createdAtDirective{},
		fieldMapDirective{}, defaultDirective{}, relationDirective{},
	}
}
