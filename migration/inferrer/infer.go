package inferrer

import (
	"sort"

	"github.com/kodeflow/datamodel/idm"
)

// Infer diffs previous against next and returns the ordered list of steps
// needed to reconcile a database built for previous into one matching next.
// previous may be nil, meaning "no prior schema" (an initial migration):
// every model, enum, and relation in next is then emitted as a creation.
//
// The returned Plan is deterministic: given the same (previous, next) pair,
// repeated calls produce byte-identical step lists, since every set-typed
// lookup below is driven by a sorted key rather than map iteration order.
func Infer(previous, next *idm.InternalDataModel) *Plan {
	if previous == nil {
		previous = &idm.InternalDataModel{}
	}

	p := &Plan{}

	// Phase 1: create enums referenced by next but absent in previous.
	for _, name := range sortedEnumNames(next) {
		e := enumNamed(next, name)
		if enumNamed(previous, name) == nil {
			p.Steps = append(p.Steps, MigrationStep{Kind: StepCreateEnum, EnumName: e.Name, EnumValues: e.Values})
		}
	}
	// Complement: drop enums that no longer exist. Not named as a phase in
	// the component design but required for the create-enum phase to have a
	// symmetric inverse; emitted last, after every table/relation step.
	var dropEnumSteps []MigrationStep
	for _, name := range sortedEnumNames(previous) {
		if enumNamed(next, name) == nil {
			dropEnumSteps = append(dropEnumSteps, MigrationStep{Kind: StepDropEnum, EnumName: name})
		}
	}

	// Phase 2: create tables for new models.
	for _, name := range sortedModelNames(next) {
		m := next.ModelNamed(name)
		if previous.ModelNamed(name) != nil {
			continue
		}
		p.Steps = append(p.Steps, createTableStep(m))
		for _, t := range sortedScalarListTables(m) {
			p.Steps = append(p.Steps, createScalarListTableStep(t))
		}
		for _, key := range sortedKeys(uniqueGroupSet(m)) {
			cols := splitKey(key)
			p.Steps = append(p.Steps, MigrationStep{
				Kind:         StepAddUniqueIndex,
				TableName:    m.PhysicalName,
				IndexName:    uniqueIndexName(m.PhysicalName, cols),
				IndexColumns: cols,
			})
		}
	}

	// Phase 3: drop tables removed from next.
	for _, name := range sortedModelNames(previous) {
		if next.ModelNamed(name) != nil {
			continue
		}
		m := previous.ModelNamed(name)
		for _, t := range sortedScalarListTables(m) {
			p.Steps = append(p.Steps, MigrationStep{Kind: StepDropTable, TableName: t.Name})
		}
		p.Steps = append(p.Steps, MigrationStep{Kind: StepDropTable, TableName: m.PhysicalName})
	}

	// Phase 4: column-level alterations for models present in both.
	for _, name := range sortedModelNames(next) {
		prevModel := previous.ModelNamed(name)
		nextModel := next.ModelNamed(name)
		if prevModel == nil || nextModel == nil {
			continue
		}
		p.Steps = append(p.Steps, diffColumns(prevModel, nextModel, next)...)
		p.Steps = append(p.Steps, diffUniqueIndexes(prevModel, nextModel)...)
		p.Steps = append(p.Steps, diffScalarListTables(prevModel, nextModel)...)
	}

	// Phase 5: relation reconciliation.
	p.Steps = append(p.Steps, diffRelations(previous, next)...)

	p.Steps = append(p.Steps, dropEnumSteps...)

	return p
}

func sortedEnumNames(d *idm.InternalDataModel) []string {
	var names []string
	for _, e := range d.Enums {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

func enumNamed(d *idm.InternalDataModel, name string) *idm.InternalEnum {
	for _, e := range d.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func sortedModelNames(d *idm.InternalDataModel) []string {
	var names []string
	for _, m := range d.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

func sortedScalarListTables(m *idm.Model) []*idm.ScalarListTable {
	out := append([]*idm.ScalarListTable(nil), m.ScalarListFields...)
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func createTableStep(m *idm.Model) MigrationStep {
	step := MigrationStep{Kind: StepCreateTable, TableName: m.PhysicalName}
	for _, f := range m.ScalarFields {
		step.Columns = append(step.Columns, columnSpecOf(f))
	}
	return step
}

func columnSpecOf(f *idm.ScalarField) ColumnSpec {
	isID := f.Behaviour.Kind == idm.BehaviourID
	return ColumnSpec{
		Name:          f.PhysicalName,
		Type:          f.Type,
		Required:      f.Required,
		Default:       nil,
		IsPrimary:     isID,
		AutoIncrement: isID && f.Behaviour.IDStrat == idm.IDStrategyAuto,
	}
}

func createScalarListTableStep(t *idm.ScalarListTable) MigrationStep {
	return MigrationStep{
		Kind:      StepCreateTable,
		TableName: t.Name,
		Columns: []ColumnSpec{
			{Name: "nodeId", Type: t.NodeIDType, Required: true, IsPrimary: true},
			{Name: "position", Type: idm.TypeIdentifier{Kind: idm.TIInt}, Required: true, IsPrimary: true},
			{Name: "value", Type: t.ValueType, Required: true},
		},
	}
}

func diffColumns(prev, next *idm.Model, nextSchema *idm.InternalDataModel) []MigrationStep {
	var steps []MigrationStep

	for _, f := range next.ScalarFields {
		if prev.ScalarFieldNamed(f.Name) == nil {
			steps = append(steps, MigrationStep{Kind: StepAddColumn, TableName: next.PhysicalName, Column: columnSpecOf(f)})
		}
	}
	for _, f := range prev.ScalarFields {
		if next.ScalarFieldNamed(f.Name) == nil {
			steps = append(steps, MigrationStep{Kind: StepDropColumn, TableName: next.PhysicalName, ColumnName: f.PhysicalName})
		}
	}

	for _, nf := range next.ScalarFields {
		pf := prev.ScalarFieldNamed(nf.Name)
		if pf == nil {
			continue
		}
		if !sameType(pf.Type, nf.Type) {
			step := MigrationStep{
				Kind:      StepAlterColumnType,
				TableName: next.PhysicalName,
				Column:    columnSpecOf(nf),
			}
			if nf.Behaviour.Kind == idm.BehaviourID {
				step.CascadeFKs = cascadingFKs(next.Name, nextSchema)
			}
			steps = append(steps, step)
			continue
		}
		if pf.PhysicalName != nf.PhysicalName {
			steps = append(steps, MigrationStep{
				Kind:          StepRenameColumn,
				TableName:     next.PhysicalName,
				ColumnName:    pf.PhysicalName,
				NewColumnName: nf.PhysicalName,
			})
		}
	}

	return steps
}

func sameType(a, b idm.TypeIdentifier) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == idm.TIEnum {
		return a.Enum != nil && b.Enum != nil && a.Enum.Name == b.Enum.Name
	}
	return true
}

// cascadingFKs finds every inline-manifestation FK in the next schema that
// references modelName's id column, so a type change on that id can be
// applied to the referencing columns within the same migration. Each spec
// carries everything needed to drop the constraint, retype the referencing
// column, and re-add the constraint.
func cascadingFKs(modelName string, next *idm.InternalDataModel) []FKSpec {
	var out []FKSpec
	for _, r := range next.Relations {
		if r.Manifestation.Kind != idm.ManifestationInline {
			continue
		}
		parent := r.ModelA
		if r.Manifestation.InTableOfModelName == r.ModelA {
			parent = r.ModelB
		}
		if parent != modelName {
			continue
		}
		out = append(out, inlineFKSpec(r, next))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}

// inlineFKSpec builds the full FKSpec for an inline relation against the
// schema it lives in: physical table names, the referenced id column, and
// the referencing column's type.
func inlineFKSpec(r *idm.Relation, schema *idm.InternalDataModel) FKSpec {
	parent := r.ModelA
	if r.Manifestation.InTableOfModelName == r.ModelA {
		parent = r.ModelB
	}
	spec := FKSpec{
		Table:          r.Manifestation.InTableOfModelName,
		Column:         r.Manifestation.ReferencingColumn,
		RefTable:       parent,
		RefColumn:      "id",
		OnDelete:       r.Manifestation.OnDelete,
		ColumnRequired: r.Manifestation.Required,
		Name:           "fk_" + r.Manifestation.InTableOfModelName + "_" + r.Manifestation.ReferencingColumn,
	}
	if fkModel := schema.ModelNamed(r.Manifestation.InTableOfModelName); fkModel != nil {
		spec.Table = fkModel.PhysicalName
	}
	if parentModel := schema.ModelNamed(parent); parentModel != nil {
		spec.RefTable = parentModel.PhysicalName
		if idf := parentModel.IDField(); idf != nil {
			spec.RefColumn = idf.PhysicalName
			spec.ColumnType = idf.Type
		}
	}
	return spec
}

func diffUniqueIndexes(prev, next *idm.Model) []MigrationStep {
	var steps []MigrationStep

	prevSet := uniqueGroupSet(prev)
	nextSet := uniqueGroupSet(next)

	for _, key := range sortedKeys(nextSet) {
		if !prevSet[key] {
			cols := splitKey(key)
			steps = append(steps, MigrationStep{
				Kind:         StepAddUniqueIndex,
				TableName:    next.PhysicalName,
				IndexName:    uniqueIndexName(next.PhysicalName, cols),
				IndexColumns: cols,
			})
		}
	}
	for _, key := range sortedKeys(prevSet) {
		if !nextSet[key] {
			steps = append(steps, MigrationStep{
				Kind:      StepDropUniqueIndex,
				TableName: next.PhysicalName,
				IndexName: uniqueIndexName(next.PhysicalName, splitKey(key)),
			})
		}
	}
	return steps
}

func uniqueGroupSet(m *idm.Model) map[string]bool {
	set := map[string]bool{}
	for _, f := range m.ScalarFields {
		if f.Unique {
			set[f.PhysicalName] = true
		}
	}
	for _, group := range m.UniqueGroups {
		sorted := append([]string(nil), group...)
		sort.Strings(sorted)
		set[joinKey(sorted)] = true
	}
	return set
}

func sortedKeys(m map[string]bool) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func joinKey(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += "\x00"
		}
		out += c
	}
	return out
}

func splitKey(key string) []string {
	var out []string
	cur := ""
	for _, r := range key {
		if r == '\x00' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out
}

func uniqueIndexName(table string, cols []string) string {
	name := "uq_" + table
	for _, c := range cols {
		name += "_" + c
	}
	return name
}

func diffScalarListTables(prev, next *idm.Model) []MigrationStep {
	var steps []MigrationStep
	for _, t := range sortedScalarListTables(next) {
		pt := scalarListTableNamed(prev, t.Field)
		if pt == nil {
			steps = append(steps, createScalarListTableStep(t))
			continue
		}
		// The owning model's id type changed: every side table's nodeId
		// column follows it in the same migration.
		if !sameType(pt.NodeIDType, t.NodeIDType) {
			steps = append(steps, MigrationStep{
				Kind:      StepAlterColumnType,
				TableName: t.Name,
				Column:    ColumnSpec{Name: "nodeId", Type: t.NodeIDType, Required: true},
			})
		}
		if !sameType(pt.ValueType, t.ValueType) {
			steps = append(steps, MigrationStep{
				Kind:      StepAlterColumnType,
				TableName: t.Name,
				Column:    ColumnSpec{Name: "value", Type: t.ValueType, Required: true},
			})
		}
	}
	for _, t := range sortedScalarListTables(prev) {
		if scalarListTableNamed(next, t.Field) == nil {
			steps = append(steps, MigrationStep{Kind: StepDropTable, TableName: t.Name})
		}
	}
	return steps
}

func scalarListTableNamed(m *idm.Model, field string) *idm.ScalarListTable {
	for _, t := range m.ScalarListFields {
		if t.Field == field {
			return t
		}
	}
	return nil
}

func diffRelations(previous, next *idm.InternalDataModel) []MigrationStep {
	var steps []MigrationStep

	prevByName := map[string]*idm.Relation{}
	for _, r := range previous.Relations {
		prevByName[r.Name] = r
	}
	nextByName := map[string]*idm.Relation{}
	for _, r := range next.Relations {
		nextByName[r.Name] = r
	}

	var names []string
	for name := range nextByName {
		names = append(names, name)
	}
	for name := range prevByName {
		if _, ok := nextByName[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// A relation that disappears under one name and reappears under another
	// over the same model pair with the same manifestation kind has been
	// renamed, not replaced: a many-to-many keeps its rows through a join
	// table rename, and an unchanged inline FK needs no step at all.
	renamed := matchRenamedRelations(names, prevByName, nextByName)

	for _, name := range names {
		pr, hadPrev := prevByName[name]
		nr, hasNext := nextByName[name]

		switch {
		case !hadPrev && hasNext:
			if claimedBy, ok := renamed.byNew[name]; ok {
				steps = append(steps, renameRelationSteps(prevByName[claimedBy], nr, previous, next)...)
				continue
			}
			steps = append(steps, createRelationSteps(nr, next)...)
		case hadPrev && !hasNext:
			if _, ok := renamed.byOld[name]; ok {
				continue // handled when the new name comes up
			}
			steps = append(steps, dropRelationSteps(pr, previous)...)
		case hadPrev && hasNext:
			steps = append(steps, diffRelation(pr, nr, previous, next)...)
		}
	}

	return steps
}

type renamePairs struct {
	byOld map[string]string // removed name -> added name
	byNew map[string]string // added name -> removed name
}

// matchRenamedRelations pairs each removed relation with an added one over
// the same (ModelA, ModelB) and manifestation kind, first match in sorted
// name order so repeated runs pick the same pairing.
func matchRenamedRelations(names []string, prev, next map[string]*idm.Relation) renamePairs {
	out := renamePairs{byOld: map[string]string{}, byNew: map[string]string{}}
	for _, oldName := range names {
		pr, ok := prev[oldName]
		if !ok {
			continue
		}
		if _, stillThere := next[oldName]; stillThere {
			continue
		}
		for _, newName := range names {
			nr, ok := next[newName]
			if !ok {
				continue
			}
			if _, existed := prev[newName]; existed {
				continue
			}
			if _, claimed := out.byNew[newName]; claimed {
				continue
			}
			if nr.ModelA == pr.ModelA && nr.ModelB == pr.ModelB && nr.Manifestation.Kind == pr.Manifestation.Kind {
				out.byOld[oldName] = newName
				out.byNew[newName] = oldName
				break
			}
		}
	}
	return out
}

func renameRelationSteps(prev, next *idm.Relation, prevSchema, nextSchema *idm.InternalDataModel) []MigrationStep {
	if next.Manifestation.Kind == idm.ManifestationRelationTable {
		return []MigrationStep{{
			Kind:         StepRenameJoinTable,
			OldJoinTable: prev.Manifestation.Table,
			JoinTable:    next.Manifestation.Table,
		}}
	}
	// Inline: the FK column and constraint derive from table and column
	// names, not the relation name, so only a side-move needs DDL.
	if prev.Manifestation.InTableOfModelName != next.Manifestation.InTableOfModelName ||
		prev.Manifestation.ReferencingColumn != next.Manifestation.ReferencingColumn {
		return append(dropRelationSteps(prev, prevSchema), createRelationSteps(next, nextSchema)...)
	}
	return nil
}

func createRelationSteps(r *idm.Relation, schema *idm.InternalDataModel) []MigrationStep {
	if r.Manifestation.Kind == idm.ManifestationRelationTable {
		step := MigrationStep{
			Kind:           StepCreateJoinTable,
			JoinTable:      r.Manifestation.Table,
			JoinModelAName: r.ModelA,
			JoinModelBName: r.ModelB,
			JoinColumnA:    r.Manifestation.ModelAColumn,
			JoinColumnB:    r.Manifestation.ModelBColumn,
			JoinFKA:        joinSideFK(r.Manifestation, r.Manifestation.ModelAColumn, r.ModelA, schema),
			JoinFKB:        joinSideFK(r.Manifestation, r.Manifestation.ModelBColumn, r.ModelB, schema),
		}
		return []MigrationStep{step}
	}
	fk := inlineFKSpec(r, schema)
	fk.WithColumn = true
	return []MigrationStep{{Kind: StepAddForeignKey, FK: fk}}
}

// joinSideFK builds the FK from one of a join table's two columns to the
// referenced model's id.
func joinSideFK(m idm.Manifestation, column, modelName string, schema *idm.InternalDataModel) FKSpec {
	spec := FKSpec{
		Table:          m.Table,
		Column:         column,
		RefTable:       modelName,
		RefColumn:      "id",
		ColumnRequired: true,
		Name:           "fk_" + m.Table + "_" + column,
	}
	if model := schema.ModelNamed(modelName); model != nil {
		spec.RefTable = model.PhysicalName
		if idf := model.IDField(); idf != nil {
			spec.RefColumn = idf.PhysicalName
			spec.ColumnType = idf.Type
		}
	}
	return spec
}

func dropRelationSteps(r *idm.Relation, schema *idm.InternalDataModel) []MigrationStep {
	if r.Manifestation.Kind == idm.ManifestationRelationTable {
		return []MigrationStep{{Kind: StepDropJoinTable, JoinTable: r.Manifestation.Table}}
	}
	fk := inlineFKSpec(r, schema)
	fk.WithColumn = true
	return []MigrationStep{{Kind: StepDropForeignKey, FK: fk}}
}

// diffRelation handles a relation present under the same name in both
// schemas: a manifestation-kind change, or an inline FK moving sides, is
// treated as drop-old/create-new; otherwise no step is needed.
func diffRelation(prev, next *idm.Relation, prevSchema, nextSchema *idm.InternalDataModel) []MigrationStep {
	if prev.Manifestation.Kind != next.Manifestation.Kind {
		return append(dropRelationSteps(prev, prevSchema), createRelationSteps(next, nextSchema)...)
	}
	if next.Manifestation.Kind == idm.ManifestationInline {
		if prev.Manifestation.InTableOfModelName != next.Manifestation.InTableOfModelName ||
			prev.Manifestation.ReferencingColumn != next.Manifestation.ReferencingColumn {
			return append(dropRelationSteps(prev, prevSchema), createRelationSteps(next, nextSchema)...)
		}
		return nil
	}
	// RelationTable: a table rename is the only possible change once both
	// sides' manifestation kind matches.
	if prev.Manifestation.Table != next.Manifestation.Table {
		return []MigrationStep{{
			Kind:         StepRenameJoinTable,
			OldJoinTable: prev.Manifestation.Table,
			JoinTable:    next.Manifestation.Table,
		}}
	}
	return nil
}
