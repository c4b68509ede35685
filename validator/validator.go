package validator

import (
	"golang.org/x/text/cases"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/dml"
)

// caseFolder normalizes a physical name the same way MySQL does on a
// lower_case_table_names=1 (or Windows/macOS default-filesystem) server, so
// two models that only differ by case can be flagged before they collide at
// migration time rather than at CREATE TABLE time on one dialect only.
var caseFolder = cases.Fold()

// Validator runs every model-level semantic check against a lowered
// Datamodel and the AST it was built from, returning an ErrorCollection
// rather than stopping at the first failure.
type Validator struct{}

// New returns a Validator with all built-in checks enabled.
func New() *Validator {
	return &Validator{}
}

// Validate runs validateModelHasID, validateIDFieldsValid,
// validateRelationsNotAmbiguous, and validateEmbeddedTypesHaveNoBackRelation
// over every model in dm, accumulating failures, and returns the
// accumulated error (nil if the datamodel is valid).
func (v *Validator) Validate(astSchema *ast.Datamodel, dm *dml.Datamodel) error {
	var errs ErrorCollection

	for _, model := range dm.Models {
		astModel := astSchema.FindModel(model.Name)
		if astModel == nil {
			errs.Add(newStateError())
			continue
		}

		errs.Add(v.validateModelHasID(astModel, model))
		errs.Add(v.validateIDFieldsValid(astSchema, model))
		errs.Add(v.validateRelationsNotAmbiguous(astSchema, model))
		errs.Add(v.validateEmbeddedTypesHaveNoBackRelation(astSchema, dm, model))
	}

	errs.Add(v.validatePhysicalNamesCaseInsensitiveUnique(astSchema, dm))

	return errs.AsError()
}

// validatePhysicalNamesCaseInsensitiveUnique flags two models whose physical
// table names differ only by case. Postgres and a case-sensitive MySQL both
// accept it, but it silently collides the moment the same migration runs
// against MySQL with lower_case_table_names=1 or SQLite on a case-preserving
// but case-insensitive filesystem, so it is rejected everywhere up front.
func (v *Validator) validatePhysicalNamesCaseInsensitiveUnique(astSchema *ast.Datamodel, dm *dml.Datamodel) error {
	seen := make(map[string]*dml.Model, len(dm.Models))
	for _, model := range dm.Models {
		folded := caseFolder.String(model.PhysicalName())
		if other, ok := seen[folded]; ok {
			astModel := astSchema.FindModel(model.Name)
			if astModel == nil {
				return newStateError()
			}
			return &ModelValidationError{
				Message:   "Physical table name collides case-insensitively with model " + other.Name + ".",
				ModelName: model.Name,
				Span:      astModel.Span,
			}
		}
		seen[folded] = model
	}
	return nil
}

func (v *Validator) validateModelHasID(astModel *ast.Model, model *dml.Model) error {
	if model.IsRelationModel() {
		return nil
	}
	if len(model.IDFields()) == 1 {
		return nil
	}
	return &ModelValidationError{
		Message:   "Exactly one field must be marked as the id field with the `@id` directive.",
		ModelName: model.Name,
		Span:      astModel.Span,
	}
}

func (v *Validator) validateIDFieldsValid(astSchema *ast.Datamodel, model *dml.Model) error {
	for _, idField := range model.IDFields() {
		if !idFieldShapeIsValid(idField) {
			astField := astSchema.FindField(model.Name, idField.Name)
			if astField == nil {
				return newStateError()
			}
			return &FieldValidationError{
				Message:   "Invalid ID field. ID field must be one of: Int @id, String @id @default(cuid()), String @id @default(uuid()).",
				ModelName: model.Name,
				FieldName: idField.Name,
				Span:      astField.Span,
			}
		}
	}
	return nil
}

// idFieldShapeIsValid implements invariant 2 in §3: an id field is either a
// required Int with no default, or a required String defaulted to cuid()
// or uuid().
func idFieldShapeIsValid(f *dml.Field) bool {
	if f.FieldType.Kind() != dml.KindBase {
		return false
	}
	switch f.FieldType.Scalar() {
	case dml.Int:
		return f.Arity == dml.Required && f.Default == nil
	case dml.String:
		if f.Arity != dml.Required || f.Default == nil || f.Default.Kind != dml.DefaultExpr {
			return false
		}
		return f.Default.Expr == "cuid" || f.Default.Expr == "uuid"
	default:
		return false
	}
}

func (v *Validator) validateRelationsNotAmbiguous(astSchema *ast.Datamodel, model *dml.Model) error {
	for _, a := range model.Fields {
		relA := a.FieldType.Relation()
		if relA == nil {
			continue
		}
		for _, b := range model.Fields {
			if a == b {
				continue
			}
			relB := b.FieldType.Relation()
			if relB == nil {
				continue
			}
			if relA.To != model.Name && relB.To != model.Name {
				if relA.To == relB.To && relA.Name == relB.Name {
					astField := astSchema.FindField(model.Name, a.Name)
					if astField == nil {
						return newStateError()
					}
					return &ModelValidationError{
						Message:   "Ambiguous relation detected.",
						ModelName: model.Name,
						Span:      astField.Span,
					}
				}
				continue
			}

			// Self-relation case: scan a third distinct field also pointing
			// back at the owning model under the same name.
			for _, c := range model.Fields {
				if c == a || c == b {
					continue
				}
				relC := c.FieldType.Relation()
				if relC == nil {
					continue
				}
				if relC.To == model.Name && relA.Name == relB.Name && relA.Name == relC.Name {
					astField := astSchema.FindField(model.Name, a.Name)
					if astField == nil {
						return newStateError()
					}
					return &ModelValidationError{
						Message:   "Ambiguous self relation detected.",
						ModelName: model.Name,
						Span:      astField.Span,
					}
				}
			}
		}
	}
	return nil
}

func (v *Validator) validateEmbeddedTypesHaveNoBackRelation(astSchema *ast.Datamodel, datamodel *dml.Datamodel, model *dml.Model) error {
	if !model.IsEmbedded {
		return nil
	}
	for _, field := range model.Fields {
		if field.IsGenerated {
			continue
		}
		rel := field.FieldType.Relation()
		if rel == nil {
			continue
		}
		related := datamodel.FindModel(rel.To)
		if related == nil {
			return newStateError()
		}
		relatedField := datamodel.RelatedField(rel.To, rel.Name, model.Name, field.Name)
		if relatedField == nil {
			return newStateError()
		}
		if len(rel.ToFields) == 0 && !relatedField.IsGenerated {
			astField := astSchema.FindField(model.Name, field.Name)
			if astField == nil {
				return newStateError()
			}
			return &ModelValidationError{
				Message:   "Embedded models cannot have back relation fields.",
				ModelName: model.Name,
				Span:      astField.Span,
			}
		}
	}
	return nil
}
