package parser

import (
	"fmt"

	"github.com/kodeflow/datamodel/ast"
)

// ParserError reports that the parser reached a point in the token stream
// where none of a known set of productions matched.
type ParserError struct {
	Expected []string
	Span     ast.Span
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("expected one of %v at %d:%d", e.Expected, e.Span.Start, e.Span.End)
}

// LegacyParserError reports a superseded syntax form with a fixed,
// human-readable message rather than a generic "unexpected token" error.
type LegacyParserError struct {
	Message string
	Span    ast.Span
}

func (e *LegacyParserError) Error() string {
	return e.Message
}

const (
	legacyListMsg     = "To specify a list, please use `Type[]` instead of `[Type]`."
	legacyColonMsg     = "Field declarations don't require a `:`."
	legacyBangMsg      = "Fields are required by default, `!` is no longer required."
	legacyModelKeyword = "Model declarations have to be indicated with the `model` keyword."
)
