package dml

import (
	"fmt"

	"github.com/kodeflow/datamodel/ast"
)

// scalarTypeNames maps the lexical type names the parser accepts to their
// ScalarType. Anything not in this table is assumed to be either an enum or
// a relation target, resolved against the rest of the datamodel below.
var scalarTypeNames = map[string]ScalarType{
	"Int":      Int,
	"Float":    Float,
	"Boolean":  Boolean,
	"String":   String,
	"DateTime": DateTime,
	"Decimal":  Decimal,
	"Json":     JSON,
	"Bytes":    Bytes,
}

// Build lowers a parsed ast.Datamodel into a dml.Datamodel by resolving
// every field's type (scalar, enum, or relation) and running each
// directive's ValidateAndApply over the DML entity it annotates.
//
// Build does not validate cross-model invariants; that is the semantic
// validator's job, run separately against the (ast, dml) pair it returns.
func Build(reg *Registry, src *ast.Datamodel) (*Datamodel, error) {
	dm := &Datamodel{}

	enumNames := map[string]bool{}
	for _, e := range src.Enums {
		enumNames[e.Name] = true
		dm.Enums = append(dm.Enums, &Enum{Name: e.Name, Values: append([]string(nil), e.Values...)})
	}

	modelNames := map[string]bool{}
	for _, m := range src.Models {
		modelNames[m.Name] = true
	}

	for _, astModel := range src.Models {
		model := &Model{Name: astModel.Name}
		for _, astField := range astModel.Fields {
			field, err := lowerFieldType(astField, enumNames, modelNames)
			if err != nil {
				return nil, err
			}
			switch astField.Type.Arity {
			case ast.Optional:
				field.Arity = Optional
			case ast.List:
				field.Arity = List
			default:
				field.Arity = Required
			}

			for _, d := range astField.Directives {
				impl, ok := reg.Field(d.Name)
				if !ok {
					return nil, &DirectiveValidationError{
						DirectiveName: d.Name,
						Message:       fmt.Sprintf("unknown field directive @%s", d.Name),
						Span:          d.Span,
					}
				}
				if err := impl.ValidateAndApply(Args{Directive: d}, field); err != nil {
					return nil, err
				}
			}
			model.Fields = append(model.Fields, field)
		}

		for _, d := range astModel.Directives {
			impl, ok := reg.Model(d.Name)
			if !ok {
				return nil, &DirectiveValidationError{
					DirectiveName: d.Name,
					Message:       fmt.Sprintf("unknown model directive @@%s", d.Name),
					Span:          d.Span,
				}
			}
			if err := impl.ValidateAndApply(Args{Directive: d}, model); err != nil {
				return nil, err
			}
		}

		dm.Models = append(dm.Models, model)
	}

	resolveRelationNames(dm)

	return dm, nil
}

func lowerFieldType(astField *ast.Field, enumNames, modelNames map[string]bool) (*Field, error) {
	typeName := astField.Type.Name
	if st, ok := scalarTypeNames[typeName]; ok {
		return &Field{Name: astField.Name, FieldType: NewBaseType(st)}, nil
	}
	if enumNames[typeName] {
		return &Field{Name: astField.Name, FieldType: NewEnumType(typeName)}, nil
	}
	if modelNames[typeName] {
		return &Field{Name: astField.Name, FieldType: NewRelationType(&RelationInfo{To: typeName})}, nil
	}
	return nil, &DirectiveValidationError{
		DirectiveName: "",
		Message:       fmt.Sprintf("unresolved field type %q", typeName),
		Span:          astField.Span,
	}
}

// resolveRelationNames assigns the auto-derived name `sorted(A,B).join("To")`
// to every relation field whose @relation directive didn't set one
// explicitly. This must run after all directives have applied so an
// explicit @relation(name: ...) always wins.
func resolveRelationNames(dm *Datamodel) {
	for _, m := range dm.Models {
		for _, f := range m.Fields {
			if !f.FieldType.IsRelation() {
				continue
			}
			rel := f.FieldType.Relation()
			if rel.Name != "" {
				continue
			}
			rel.Name = autoRelationName(m.Name, rel.To)
		}
	}
}

// autoRelationName implements the deterministic derivation
// sorted(M,N).join("To"), e.g. "BlogToPost".
func autoRelationName(a, b string) string {
	if a <= b {
		return a + "To" + b
	}
	return b + "To" + a
}
