// Package config provides configuration options for the datamodel migration
// engine. It focuses on a small, programmatic API for configuring rendering
// and migration behavior when using the engine as a library, rather than
// external configuration file management.
package config

import "github.com/kodeflow/datamodel/sqlast"

// RenderOptions contains configuration options for rendering and applying
// migrations. These options control which dialect-specific restrictions a
// caller chooses to tolerate (by skipping the affected scenario) rather
// than treat as a hard failure.
type RenderOptions struct {
	// IgnoredDialects lists SQL families for which a caller has decided to
	// skip scenarios the renderer reports via *renderer.ErrUnsupported
	// (see the SQL Renderer's support-matrix exclusions), instead of
	// failing the run. This exists primarily so test suites can assert
	// "infer + render succeeds on Postgres and MySQL" while explicitly
	// marking SQLite's lack of ALTER COLUMN TYPE as known and skipped,
	// rather than silently ignoring every dialect's failures.
	IgnoredDialects []sqlast.SqlFamily
}

// DefaultRenderOptions returns options with no dialect ignored: every
// *renderer.ErrUnsupported is treated as a failure.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{}
}

// WithIgnoredDialects returns a new RenderOptions with the given dialects
// ignored. This completely replaces the default (empty) ignore list.
func WithIgnoredDialects(families ...sqlast.SqlFamily) *RenderOptions {
	return &RenderOptions{IgnoredDialects: families}
}

// WithAdditionalIgnoredDialects returns a new RenderOptions that includes
// the default (empty) ignore list plus the additional families specified.
func WithAdditionalIgnoredDialects(families ...sqlast.SqlFamily) *RenderOptions {
	defaults := DefaultRenderOptions()
	all := make([]sqlast.SqlFamily, len(defaults.IgnoredDialects)+len(families))
	copy(all, defaults.IgnoredDialects)
	copy(all[len(defaults.IgnoredDialects):], families)
	return &RenderOptions{IgnoredDialects: all}
}

// IsDialectIgnored reports whether family's *renderer.ErrUnsupported
// results should be treated as "known, skip" rather than a hard failure.
func (o *RenderOptions) IsDialectIgnored(family sqlast.SqlFamily) bool {
	for _, f := range o.IgnoredDialects {
		if f == family {
			return true
		}
	}
	return false
}

// FilterIgnoredDialects removes ignored families from the provided slice
// and returns a new slice containing only the families o does not ignore.
// Useful for filtering a "render on every family" loop down to the ones a
// caller actually expects to succeed.
func (o *RenderOptions) FilterIgnoredDialects(families []sqlast.SqlFamily) []sqlast.SqlFamily {
	filtered := make([]sqlast.SqlFamily, 0, len(families))
	for _, f := range families {
		if !o.IsDialectIgnored(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
