package idm

import (
	"fmt"

	"github.com/kodeflow/datamodel/dml"
)

// Build converts a validated dml.Datamodel into an InternalDataModel. The
// caller is responsible for having already run the semantic validator; Build
// fails fast on the first structural inconsistency it finds rather than
// accumulating errors, since it presumes a validated input.
func Build(d *dml.Datamodel) (*InternalDataModel, error) {
	c := &converter{
		src:      d,
		enums:    map[string]*InternalEnum{},
		consumed: map[fieldKey]bool{},
	}
	return c.build()
}

type fieldKey struct {
	model string
	field string
}

type converter struct {
	src      *dml.Datamodel
	enums    map[string]*InternalEnum
	consumed map[fieldKey]bool
}

func (c *converter) build() (*InternalDataModel, error) {
	out := &InternalDataModel{}

	for _, e := range c.src.Enums {
		ie := &InternalEnum{Name: e.Name, Values: append([]string(nil), e.Values...)}
		c.enums[e.Name] = ie
		out.Enums = append(out.Enums, ie)
	}

	models := make([]*Model, len(c.src.Models))
	for i, m := range c.src.Models {
		im, err := c.convertScalarFields(m)
		if err != nil {
			return nil, err
		}
		models[i] = im
	}
	out.Models = models

	// Relation pairing runs after every model's scalar fields exist, since
	// manifestation inference needs each side's id type.
	for _, m := range c.src.Models {
		im := findModel(models, m.Name)
		for _, f := range m.Fields {
			if !f.FieldType.IsRelation() {
				continue
			}
			key := fieldKey{m.Name, f.Name}
			if c.consumed[key] {
				continue
			}
			rel, err := c.pairRelation(models, m, f)
			if err != nil {
				return nil, err
			}
			out.Relations = append(out.Relations, rel)

			im.RelationFields = append(im.RelationFields, &RelationFieldRef{FieldName: f.Name, Relation: rel, IsSideA: rel.ModelA == m.Name && rel.FieldOnA == f.Name})
		}
	}

	return out, nil
}

func findModel(models []*Model, name string) *Model {
	for _, m := range models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *converter) convertScalarFields(m *dml.Model) (*Model, error) {
	im := &Model{Name: m.Name, PhysicalName: m.PhysicalName(), IsEmbedded: m.IsEmbedded}
	for _, group := range m.UniqueGroups {
		physical := make([]string, len(group))
		for i, fieldName := range group {
			if gf := m.FieldNamed(fieldName); gf != nil {
				physical[i] = gf.PhysicalName()
			} else {
				physical[i] = fieldName
			}
		}
		im.UniqueGroups = append(im.UniqueGroups, physical)
	}

	for _, f := range m.Fields {
		if f.FieldType.IsRelation() {
			continue
		}

		if f.Arity == dml.List {
			ti, err := c.resolveType(f)
			if err != nil {
				return nil, err
			}
			im.ScalarListFields = append(im.ScalarListFields, &ScalarListTable{
				Model:     m.Name,
				Field:     f.Name,
				Name:      fmt.Sprintf("%s_%s", m.Name, f.Name),
				ValueType: ti,
			})
			continue
		}

		ti, err := c.resolveType(f)
		if err != nil {
			return nil, err
		}

		sf := &ScalarField{
			Name:         f.Name,
			PhysicalName: f.PhysicalName(),
			Type:         ti,
			Required:     f.Arity == dml.Required,
			Unique:       f.IsUnique,
			Behaviour:    behaviourOf(f),
		}
		im.ScalarFields = append(im.ScalarFields, sf)
	}

	// Now that id types are known, fix up every scalar-list table's nodeId
	// type to the model's id type.
	if idField := im.IDField(); idField != nil {
		for _, t := range im.ScalarListFields {
			t.NodeIDType = idField.Type
		}
	}

	return im, nil
}

func behaviourOf(f *dml.Field) FieldBehaviour {
	switch {
	case f.IsID:
		switch {
		case f.FieldType.Kind() == dml.KindBase && f.FieldType.Scalar() == dml.Int:
			return FieldBehaviour{Kind: BehaviourID, IDStrat: IDStrategyAuto, Sequence: f.Name + "_seq"}
		case f.Default != nil && f.Default.Kind == dml.DefaultExpr && f.Default.Expr == "cuid":
			return FieldBehaviour{Kind: BehaviourID, IDStrat: IDStrategyCUID}
		case f.Default != nil && f.Default.Kind == dml.DefaultExpr && f.Default.Expr == "uuid":
			return FieldBehaviour{Kind: BehaviourID, IDStrat: IDStrategyUUID}
		}
	case f.IsCreatedAt:
		return FieldBehaviour{Kind: BehaviourCreatedAt}
	case f.IsUpdatedAt:
		return FieldBehaviour{Kind: BehaviourUpdatedAt}
	}
	return FieldBehaviour{Kind: BehaviourNone}
}

// resolveType implements the fixed ScalarType -> TypeIdentifier mapping,
// including the id-string special case (cuid -> GraphQLID, uuid -> UUID).
func (c *converter) resolveType(f *dml.Field) (TypeIdentifier, error) {
	switch f.FieldType.Kind() {
	case dml.KindEnum:
		ie, ok := c.enums[f.FieldType.EnumName()]
		if !ok {
			return TypeIdentifier{}, fmt.Errorf("unresolved enum reference %q", f.FieldType.EnumName())
		}
		return TypeIdentifier{Kind: TIEnum, Enum: ie}, nil
	case dml.KindBase:
		switch f.FieldType.Scalar() {
		case dml.Int:
			return TypeIdentifier{Kind: TIInt}, nil
		case dml.Float, dml.Decimal:
			return TypeIdentifier{Kind: TIFloat}, nil
		case dml.Boolean:
			return TypeIdentifier{Kind: TIBoolean}, nil
		case dml.DateTime:
			return TypeIdentifier{Kind: TIDateTime}, nil
		case dml.String:
			if f.IsID && f.Default != nil && f.Default.Kind == dml.DefaultExpr {
				switch f.Default.Expr {
				case "cuid":
					return TypeIdentifier{Kind: TIGraphQLID}, nil
				case "uuid":
					return TypeIdentifier{Kind: TIUUID}, nil
				}
			}
			return TypeIdentifier{Kind: TIString}, nil
		default:
			return TypeIdentifier{Kind: TIString}, nil
		}
	default:
		return TypeIdentifier{}, fmt.Errorf("field %q has no resolvable scalar type", f.Name)
	}
}

// pairRelation resolves the companion field for (m, f), builds the Relation
// object once, marks both sides consumed, and infers the manifestation.
func (c *converter) pairRelation(models []*Model, m *dml.Model, f *dml.Field) (*Relation, error) {
	rel := f.FieldType.Relation()
	peerField := c.src.RelatedField(rel.To, rel.Name, m.Name, f.Name)
	if peerField == nil {
		return nil, fmt.Errorf("relation %q on %s.%s has no resolvable companion field", rel.Name, m.Name, f.Name)
	}
	peerModel := c.src.FindModel(rel.To)

	c.consumed[fieldKey{m.Name, f.Name}] = true
	c.consumed[fieldKey{peerModel.Name, peerField.Name}] = true

	modelA, fieldOnA, modelB, fieldOnB := orderRelationSides(m.Name, f.Name, peerModel.Name, peerField.Name)

	r := &Relation{Name: rel.Name, ModelA: modelA, ModelB: modelB, FieldOnA: fieldOnA, FieldOnB: fieldOnB}

	xArity, yArity := f.Arity, peerField.Arity
	switch {
	case xArity == dml.List && yArity == dml.List:
		r.Manifestation = Manifestation{
			Kind:         ManifestationRelationTable,
			Table:        "_" + rel.Name,
			ModelAColumn: "A",
			ModelBColumn: "B",
		}
	default:
		fkModel, fkField := m, f
		switch {
		case xArity == dml.List:
			fkModel, fkField = peerModel, peerField
		case yArity == dml.List:
			fkModel, fkField = m, f
		case len(f.FieldType.Relation().ToFields) > 0:
			fkModel, fkField = m, f
		case len(peerField.FieldType.Relation().ToFields) > 0:
			fkModel, fkField = peerModel, peerField
		case m.Name > peerModel.Name:
			fkModel, fkField = m, f
		default:
			fkModel, fkField = peerModel, peerField
		}
		r.Manifestation = Manifestation{
			Kind:               ManifestationInline,
			InTableOfModelName: fkModel.Name,
			ReferencingColumn:  fkField.PhysicalName(),
			OnDelete:           fkField.FieldType.Relation().OnDelete,
			Required:           fkField.Arity == dml.Required,
		}
	}

	return r, nil
}

// orderRelationSides assigns sides A/B so that model_a.name <= model_b.name
// lexicographically; self-relations are tie-broken by field name order.
func orderRelationSides(modelX, fieldX, modelY, fieldY string) (modelA, fieldOnA, modelB, fieldOnB string) {
	if modelX < modelY {
		return modelX, fieldX, modelY, fieldY
	}
	if modelX > modelY {
		return modelY, fieldY, modelX, fieldX
	}
	// Self-relation: same model on both sides, tie-break by field name.
	if fieldX <= fieldY {
		return modelX, fieldX, modelY, fieldY
	}
	return modelY, fieldY, modelX, fieldX
}
