// Package validator runs the semantic checks a lowered Datamodel must pass
// before it can be converted to the internal data model or diffed for
// migration.
package validator

import (
	"go.uber.org/multierr"

	"github.com/kodeflow/datamodel/ast"
)

// ModelValidationError is a diagnostic anchored at a model's span.
type ModelValidationError struct {
	Message   string
	ModelName string
	Span      ast.Span
}

func (e *ModelValidationError) Error() string {
	return e.Message
}

// FieldValidationError is a diagnostic anchored at a specific field's span.
type FieldValidationError struct {
	Message   string
	ModelName string
	FieldName string
	Span      ast.Span
}

func (e *FieldValidationError) Error() string {
	return e.Message
}

// StateError reports an internal invariant violation: the DML claimed a
// model or field existed in the AST and it didn't. This is never a user
// error; it means lowering and validation have gotten out of sync.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// stateErrorMessage is the fixed message used whenever an AST lookup that
// the DML promised would succeed comes back empty.
const stateErrorMessage = "Failed lookup of model, field or optional property during internal processing. This means that the internal representation was mutated incorrectly."

func newStateError() error {
	return &StateError{Message: stateErrorMessage}
}

// ErrorCollection accumulates every error produced by a single Validate
// run. It is backed by multierr so the usual Go error-wrapping idioms
// (errors.Is/As) keep working against the combined value.
type ErrorCollection struct {
	err error
}

// Add appends err to the collection. A nil err is a no-op.
func (c *ErrorCollection) Add(err error) {
	if err == nil {
		return
	}
	c.err = multierr.Append(c.err, err)
}

// HasErrors reports whether any error has been added.
func (c *ErrorCollection) HasErrors() bool {
	return c.err != nil
}

// Errors returns the individual errors added, in order.
func (c *ErrorCollection) Errors() []error {
	return multierr.Errors(c.err)
}

// AsError returns the collection as a single error value, or nil if empty.
func (c *ErrorCollection) AsError() error {
	if !c.HasErrors() {
		return nil
	}
	return c.err
}
