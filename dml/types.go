// Package dml defines the lowered, semantically enriched datamodel: models,
// scalar and relation fields, enums, and the directive machinery that
// mutates them during lowering.
//
// A Datamodel is built once from an *ast.Datamodel by running every
// directive's ValidateAndApply over the entity it annotates, then handed to
// the validator as a read-only value. Nothing past this package's Build
// step mutates a Datamodel.
package dml

// ScalarType is the closed set of non-relation, non-enum field types.
type ScalarType int

const (
	Int ScalarType = iota
	Float
	Boolean
	String
	DateTime
	Decimal
	JSON
	Bytes
)

func (s ScalarType) String() string {
	switch s {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case DateTime:
		return "DateTime"
	case Decimal:
		return "Decimal"
	case JSON:
		return "Json"
	case Bytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// Arity mirrors ast.Arity at the DML layer; kept as a distinct type since
// the two layers are allowed to diverge in later lowering passes.
type Arity int

const (
	Required Arity = iota
	Optional
	List
)

// FieldTypeKind discriminates the FieldType tagged union.
type FieldTypeKind int

const (
	KindBase FieldTypeKind = iota
	KindEnum
	KindRelation
)

// FieldType is the tagged union `Base(ScalarType) | Enum(name) |
// Relation(RelationInfo)`. Construct with NewBaseType/NewEnumType/
// NewRelationType and switch on Kind() to inspect.
type FieldType struct {
	kind     FieldTypeKind
	scalar   ScalarType
	enumName string
	relation *RelationInfo
}

func NewBaseType(s ScalarType) FieldType       { return FieldType{kind: KindBase, scalar: s} }
func NewEnumType(name string) FieldType        { return FieldType{kind: KindEnum, enumName: name} }
func NewRelationType(r *RelationInfo) FieldType { return FieldType{kind: KindRelation, relation: r} }

func (t FieldType) Kind() FieldTypeKind     { return t.kind }
func (t FieldType) Scalar() ScalarType      { return t.scalar }
func (t FieldType) EnumName() string        { return t.enumName }
func (t FieldType) Relation() *RelationInfo { return t.relation }
func (t FieldType) IsRelation() bool        { return t.kind == KindRelation }

// OnDeleteAction is the FK action taken when the referenced row is deleted.
type OnDeleteAction int

const (
	NoAction OnDeleteAction = iota
	Cascade
	SetNull
	Restrict
)

// RelationInfo describes one endpoint of a logical relation as declared (or
// inferred) on a single field.
type RelationInfo struct {
	To       string   // peer model name
	Name     string   // relation name; auto-derived if the user didn't set one
	ToFields []string // referenced peer fields; empty means this is the back-relation endpoint
	OnDelete OnDeleteAction
}

// DefaultKind discriminates Field.Default's two forms: a literal value or a
// zero-arg expression call such as cuid()/uuid()/now().
type DefaultKind int

const (
	DefaultLiteral DefaultKind = iota
	DefaultExpr
)

// DefaultValue is a field's `@default(...)` payload.
type DefaultValue struct {
	Kind  DefaultKind
	Expr  string // "cuid", "uuid", "now" for DefaultExpr
	Value any    // literal Go value for DefaultLiteral
}

// Field is a scalar, enum, or relation field on a Model.
type Field struct {
	Name         string
	FieldType    FieldType
	Arity        Arity
	Default      *DefaultValue
	IsUnique     bool
	IsID         bool
	IsGenerated  bool
	IsUpdatedAt  bool
	IsCreatedAt  bool
	DatabaseName string // set by @map(name), else empty
}

// PhysicalName returns the column name this field should be rendered as:
// the @map override if present, otherwise the logical field name.
func (f *Field) PhysicalName() string {
	if f.DatabaseName != "" {
		return f.DatabaseName
	}
	return f.Name
}

// Model is a DML entity: a named, ordered set of fields plus the flags
// built-in model directives attach.
type Model struct {
	Name         string
	Fields       []*Field
	IsEmbedded   bool
	DatabaseName string
	UniqueGroups [][]string // from @@unique([...]) directives
}

// PhysicalName returns the @@map override or the model name.
func (m *Model) PhysicalName() string {
	if m.DatabaseName != "" {
		return m.DatabaseName
	}
	return m.Name
}

// FieldNamed returns the field with the given logical name, or nil.
func (m *Model) FieldNamed(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IDFields returns the fields flagged with @id. Used by the validator and
// by IsRelationModel below.
func (m *Model) IDFields() []*Field {
	var out []*Field
	for _, f := range m.Fields {
		if f.IsID {
			out = append(out, f)
		}
	}
	return out
}

// IsRelationModel reports whether this model looks like an auto-synthesized
// many-to-many join model rather than a user-declared entity: every field is
// a relation field and none are the id. User-declared join models are never
// produced by the parser directly; this predicate exists for parity with
// the validator's id-requirement exemption and is exercised once IDM
// relation synthesis introduces model-less join tables that never reach the
// DML layer as *Model values in the first place. It is kept here as the
// documented extension point the validator's rule 1 depends on.
func (m *Model) IsRelationModel() bool {
	if len(m.Fields) == 0 {
		return false
	}
	for _, f := range m.Fields {
		if !f.FieldType.IsRelation() {
			return false
		}
	}
	return true
}

// Enum is a DML enum: a name plus its ordered set of values.
type Enum struct {
	Name   string
	Values []string
}

// Datamodel is the fully lowered, read-only view handed to the validator
// and the IDM converter.
type Datamodel struct {
	Models []*Model
	Enums  []*Enum
}

func (d *Datamodel) FindModel(name string) *Model {
	for _, m := range d.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (d *Datamodel) FindEnum(name string) *Enum {
	for _, e := range d.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// RelatedField resolves the companion field on model `to` that forms the
// other half of the relation named `relationName` originating from
// `fromModel`/`fromField`. Returns nil if no such companion exists (which
// the caller should treat as a state error: a relation field always has a
// peer once the datamodel has been lowered).
func (d *Datamodel) RelatedField(to, relationName, fromModel, fromField string) *Field {
	peer := d.FindModel(to)
	if peer == nil {
		return nil
	}
	for _, f := range peer.Fields {
		if !f.FieldType.IsRelation() {
			continue
		}
		rel := f.FieldType.Relation()
		if rel.To != fromModel {
			// Self-relations have rel.To == the owning model name, which can
			// equal fromModel even when peer != fromModel's model; the name
			// match below still disambiguates.
			if peer.Name != fromModel {
				continue
			}
		}
		if rel.Name != relationName {
			continue
		}
		if peer == d.FindModel(fromModel) && f.Name == fromField {
			continue // don't match the field against itself in a self-relation
		}
		return f
	}
	return nil
}
