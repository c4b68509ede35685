// Package cli holds the small pipeline glue shared by every datamodelctl
// subcommand (validate, diff, migrate): read a source file, parse it, lower
// it to DML, validate it, and convert it to the internal data model. None of
// the subcommands duplicate this: validate calls BuildIDM, and diff and
// migrate call BuildPipeline, which also returns the parsed AST.
package cli

import (
	"fmt"
	"os"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/dml"
	"github.com/kodeflow/datamodel/idm"
	"github.com/kodeflow/datamodel/parser"
	"github.com/kodeflow/datamodel/sqlast"
	"github.com/kodeflow/datamodel/validator"
)

// BuildIDM reads the datamodel source file at path and runs it through the
// full parse/lower/validate/convert pipeline, returning the resulting
// InternalDataModel or the first stage's error wrapped with its origin.
func BuildIDM(path string) (*idm.InternalDataModel, error) {
	_, out, err := BuildPipeline(path)
	return out, err
}

// BuildPipeline is BuildIDM plus the parsed AST, for callers that also need
// the file's `source` blocks (datasource provider and URL).
func BuildPipeline(path string) (*ast.Datamodel, *idm.InternalDataModel, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read datamodel file: %w", err)
	}

	astModel, err := parser.Parse(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse datamodel: %w", err)
	}

	dmModel, err := dml.Build(dml.NewRegistry(), astModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lower datamodel: %w", err)
	}

	if err := validator.New().Validate(astModel, dmModel); err != nil {
		return nil, nil, fmt.Errorf("datamodel is invalid:\n%w", err)
	}

	out, err := idm.Build(dmModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert datamodel: %w", err)
	}
	return astModel, out, nil
}

// DatasourceFamily returns the SqlFamily named by the first source block
// with a recognized provider (e.g. `source db { provider = "postgresql" }`),
// or false if the file declares none.
func DatasourceFamily(dm *ast.Datamodel) (sqlast.SqlFamily, bool) {
	for _, s := range dm.Sources {
		if v := s.ArgNamed("provider"); v != nil {
			if family, ok := sqlast.ParseFamily(v.Str); ok {
				return family, true
			}
		}
	}
	return 0, false
}

// DatasourceURL returns the connection URL of the first source block
// declaring one, or "".
func DatasourceURL(dm *ast.Datamodel) string {
	for _, s := range dm.Sources {
		if v := s.ArgNamed("url"); v != nil {
			return v.Str
		}
	}
	return ""
}

// ResolveFamily parses a --dialect flag value, returning a descriptive error
// for an unrecognized one rather than letting it reach the renderer.
func ResolveFamily(dialect string) (sqlast.SqlFamily, error) {
	family, ok := sqlast.ParseFamily(dialect)
	if !ok {
		return 0, fmt.Errorf("unknown dialect %q", dialect)
	}
	return family, nil
}
