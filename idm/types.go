// Package idm builds the Internal Data Model: the physical-facing
// representation migration and rendering consume. It is derived from a
// validated dml.Datamodel and is immutable once Build returns.
package idm

import "github.com/kodeflow/datamodel/dml"

// TypeIdentifierKind is the resolved physical type of a scalar field.
type TypeIdentifierKind int

const (
	TIInt TypeIdentifierKind = iota
	TIFloat
	TIBoolean
	TIString
	TIGraphQLID // a String id sourced from cuid()
	TIUUID      // a String id sourced from uuid()
	TIDateTime
	TIEnum
)

// TypeIdentifier is the resolved physical type of an IDM scalar field.
type TypeIdentifier struct {
	Kind TypeIdentifierKind
	Enum *InternalEnum // set iff Kind == TIEnum
}

// InternalEnum carries an enum's name and values into the IDM, embedded
// directly in any TypeIdentifier that references it rather than looked up
// by name, since the IDM is meant to be read without needing the owning
// Datamodel in hand.
type InternalEnum struct {
	Name   string
	Values []string
}

// BehaviourKind discriminates FieldBehaviour's variants.
type BehaviourKind int

const (
	BehaviourNone BehaviourKind = iota
	BehaviourID
	BehaviourCreatedAt
	BehaviourUpdatedAt
	BehaviourScalarList
)

// IDStrategy is how an id field's value is produced.
type IDStrategy int

const (
	IDStrategyAuto IDStrategy = iota // Int @id, via an auto-increment sequence
	IDStrategyCUID
	IDStrategyUUID
)

// FieldBehaviour records the special role (if any) a scalar field plays:
// primary key generation, timestamp auto-management, or out-of-row list
// storage.
type FieldBehaviour struct {
	Kind     BehaviourKind
	IDStrat  IDStrategy // set iff Kind == BehaviourID
	Sequence string     // set iff Kind == BehaviourID && IDStrat == IDStrategyAuto; the backing sequence/autoincrement name
}

// ScalarField is a non-relation column on an IDM Model.
type ScalarField struct {
	Name         string
	PhysicalName string
	Type         TypeIdentifier
	Required     bool
	Unique       bool
	Behaviour    FieldBehaviour
}

// ScalarListTable is the out-of-row side table for a field of scalar list
// arity, e.g. `tags String[]` on model Post produces table "Post_tags".
type ScalarListTable struct {
	Model      string // owning model name
	Field      string // owning field name
	Name       string // physical table name: "<Model>_<field>"
	NodeIDType TypeIdentifier
	ValueType  TypeIdentifier
}

// ManifestationKind discriminates how a logical Relation is physically
// realized.
type ManifestationKind int

const (
	ManifestationInline ManifestationKind = iota
	ManifestationRelationTable
	// ManifestationExplicitLinkTable is reserved for a future third
	// manifestation (forced explicit link table / heterogeneous-id join
	// tables) and is never constructed by the converter today.
	ManifestationExplicitLinkTable
)

// Manifestation is how a Relation is physically realized.
type Manifestation struct {
	Kind ManifestationKind

	// Inline fields.
	InTableOfModelName string
	ReferencingColumn  string
	OnDelete           dml.OnDeleteAction
	Required           bool // the declaring field's arity was Required, so the FK column is NOT NULL

	// RelationTable fields.
	Table         string
	ModelAColumn  string
	ModelBColumn  string
}

// Relation is one logical relation between two models (or a model and
// itself, for self-relations), alphabetically ordered by model name.
type Relation struct {
	Name          string
	ModelA        string
	ModelB        string
	FieldOnA      string
	FieldOnB      string
	Manifestation Manifestation
}

// RelationFieldRef is how a Model records which side of which Relation one
// of its fields represents.
type RelationFieldRef struct {
	FieldName string
	Relation  *Relation
	IsSideA   bool
}

// Model is the IDM's physical-facing view of a dml.Model.
type Model struct {
	Name             string
	PhysicalName     string
	IsEmbedded       bool
	ScalarFields     []*ScalarField
	RelationFields   []*RelationFieldRef
	ScalarListFields []*ScalarListTable
	UniqueGroups     [][]string // physical column names, from @@unique([...])
}

// ScalarFieldNamed returns the scalar field with the given logical name, or
// nil.
func (m *Model) ScalarFieldNamed(name string) *ScalarField {
	for _, f := range m.ScalarFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IDField returns the model's id scalar field, or nil if it has none (a
// pure relation/join model).
func (m *Model) IDField() *ScalarField {
	for _, f := range m.ScalarFields {
		if f.Behaviour.Kind == BehaviourID {
			return f
		}
	}
	return nil
}

// InternalDataModel is the sealed result of converting a validated
// dml.Datamodel.
type InternalDataModel struct {
	Models    []*Model
	Enums     []*InternalEnum
	Relations []*Relation
}

func (idm *InternalDataModel) ModelNamed(name string) *Model {
	for _, m := range idm.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}
