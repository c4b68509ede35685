// Package diff implements the `datamodelctl diff` subcommand: infer the
// migration needed to reach a datamodel from an empty starting point (or, in
// a future revision, a previously-saved one) and render it without applying
// anything.
package diff

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kodeflow/datamodel/config"
	"github.com/kodeflow/datamodel/internal/cli"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/migration/planner"
	"github.com/kodeflow/datamodel/renderer"
	"github.com/kodeflow/datamodel/sqlast"
)

var diffCmd = &cobra.Command{
	Use:   "diff [schema.prisma]",
	Short: "Render the migration needed to reach a datamodel, without applying it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

const (
	dialectFlag           = "dialect"
	allDialectsFlag       = "all-dialects"
	formatFlag            = "format"
	ignoreUnsupportedFlag = "ignore-unsupported"
)

var diffFlags = map[string]cobraflags.Flag{
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "postgres",
		Usage: "Target SQL dialect (postgres, mysql, sqlite); ignored with --all-dialects",
	},
	allDialectsFlag: &cobraflags.BoolFlag{
		Name:  allDialectsFlag,
		Value: false,
		Usage: "Render for every supported dialect",
	},
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: "text",
		Usage: "Output format: text or yaml",
	},
	ignoreUnsupportedFlag: &cobraflags.BoolFlag{
		Name:  ignoreUnsupportedFlag,
		Value: false,
		Usage: "Report a dialect's known-unsupported scenarios as skipped instead of failing the whole run",
	},
}

// NewDiffCommand returns the cobra command this package exposes.
func NewDiffCommand() *cobra.Command {
	cobraflags.RegisterMap(diffCmd, diffFlags)
	return diffCmd
}

// dialectResult is one dialect's rendered output, or the reason it was
// skipped; this is what --format yaml serializes.
type dialectResult struct {
	Dialect    string   `yaml:"dialect"`
	Statements []string `yaml:"statements,omitempty"`
	Skipped    string   `yaml:"skipped,omitempty"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	astSchema, next, err := cli.BuildPipeline(args[0])
	if err != nil {
		return err
	}

	plan := inferrer.Infer(nil, next)
	nodes := planner.Lower(plan)

	families := []sqlast.SqlFamily{sqlast.Postgres, sqlast.MySQL, sqlast.SQLite}
	if !diffFlags[allDialectsFlag].GetBool() {
		family, err := cli.ResolveFamily(diffFlags[dialectFlag].GetString())
		if err != nil {
			return err
		}
		// The schema's own `source db { provider = ... }` block wins over
		// the flag's default; an explicit --dialect wins over both.
		if !cmd.Flags().Changed(dialectFlag) {
			if declared, ok := cli.DatasourceFamily(astSchema); ok {
				family = declared
			}
		}
		families = []sqlast.SqlFamily{family}
	}

	opts := config.DefaultRenderOptions()
	if diffFlags[ignoreUnsupportedFlag].GetBool() {
		opts = config.WithIgnoredDialects(families...)
	}
	results := make([]dialectResult, 0, len(families))
	for _, family := range families {
		statements, err := renderer.Render(nodes, cli.RendererFor(family))
		if err != nil {
			var unsupported *renderer.ErrUnsupported
			if errors.As(err, &unsupported) && opts.IsDialectIgnored(family) {
				results = append(results, dialectResult{Dialect: family.String(), Skipped: unsupported.Error()})
				continue
			}
			return fmt.Errorf("failed to render migration for %s: %w", family, err)
		}
		results = append(results, dialectResult{Dialect: family.String(), Statements: statements})
	}

	return printResults(cmd, results)
}

func printResults(cmd *cobra.Command, results []dialectResult) error {
	out := cmd.OutOrStdout()
	if diffFlags[formatFlag].GetString() == "yaml" {
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(results)
	}

	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(out, "-- %s\n", r.Dialect)
		}
		if r.Skipped != "" {
			fmt.Fprintf(out, "-- skipped: %s\n", r.Skipped)
			continue
		}
		for _, stmt := range r.Statements {
			fmt.Fprintln(out, stmt+";")
		}
	}
	return nil
}
