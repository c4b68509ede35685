package dml

import (
	"fmt"

	"github.com/kodeflow/datamodel/ast"
)

// Args is the argument list passed to a directive's ValidateAndApply,
// wrapping the parsed ast.Directive with convenience accessors so
// individual directive implementations don't each re-derive positional vs.
// named lookup.
type Args struct {
	Directive *ast.Directive
}

// Named returns the value of a named argument, or nil.
func (a Args) Named(name string) *ast.ValueExpr {
	return a.Directive.ArgNamed(name)
}

// Positional returns the positional arguments in source order.
func (a Args) Positional() []*ast.ValueExpr {
	return a.Directive.Positional()
}

// RequireNamedOrPositional returns the argument at the given name, falling
// back to the positional argument at idx if the named form is absent.
// Returns an error if neither is present.
func (a Args) RequireNamedOrPositional(name string, idx int) (*ast.ValueExpr, error) {
	if v := a.Named(name); v != nil {
		return v, nil
	}
	pos := a.Positional()
	if idx < len(pos) {
		return pos[idx], nil
	}
	return nil, fmt.Errorf("directive %q: missing required argument %q", a.Directive.Name, name)
}

// FieldDirective is a field-level directive capability: it mutates the
// Field it annotates and can serialize that mutation back into an AST
// directive.
type FieldDirective interface {
	Name() string
	ValidateAndApply(args Args, field *Field) error
	Serialize(field *Field, dm *Datamodel) (*ast.Directive, error)
}

// ModelDirective is the model-level analogue of FieldDirective.
type ModelDirective interface {
	Name() string
	ValidateAndApply(args Args, model *Model) error
	Serialize(model *Model, dm *Datamodel) (*ast.Directive, error)
}

// Registry dispatches directive names to their implementations. Adding a
// new directive means registering it here; nothing in the validator or
// converter needs to change.
type Registry struct {
	fields map[string]FieldDirective
	models map[string]ModelDirective
}

// NewRegistry returns a registry with every built-in directive registered.
func NewRegistry() *Registry {
	r := &Registry{
		fields: map[string]FieldDirective{},
		models: map[string]ModelDirective{},
	}
	for _, d := range builtinFieldDirectives() {
		r.RegisterField(d)
	}
	for _, d := range builtinModelDirectives() {
		r.RegisterModel(d)
	}
	return r
}

func (r *Registry) RegisterField(d FieldDirective) { r.fields[d.Name()] = d }
func (r *Registry) RegisterModel(d ModelDirective) { r.models[d.Name()] = d }

// RegisterSourceField registers a field directive under a source's
// namespace, so a configured `source pg { ... }` block can expose
// `@pg.<name>` directives without colliding with built-in names. The parser
// delivers the dotted form as the directive's full name, which is exactly
// the key used here.
func (r *Registry) RegisterSourceField(source string, d FieldDirective) {
	r.fields[source+"."+d.Name()] = d
}

// RegisterSourceModel is the model-level analogue of RegisterSourceField.
func (r *Registry) RegisterSourceModel(source string, d ModelDirective) {
	r.models[source+"."+d.Name()] = d
}

func (r *Registry) Field(name string) (FieldDirective, bool) {
	d, ok := r.fields[name]
	return d, ok
}

func (r *Registry) Model(name string) (ModelDirective, bool) {
	d, ok := r.models[name]
	return d, ok
}

// DirectiveValidationError reports a directive argument that failed to
// parse or apply, anchored at the directive's own span.
type DirectiveValidationError struct {
	DirectiveName string
	Message       string
	Span          ast.Span
}

func (e *DirectiveValidationError) Error() string {
	return fmt.Sprintf("@%s: %s", e.DirectiveName, e.Message)
}
