// Package migrate implements the `datamodelctl migrate` subcommand: infer
// and apply the migration needed to bring a live database in line with a
// datamodel source file.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-extras/cobraflags"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/kodeflow/datamodel/executor"
	"github.com/kodeflow/datamodel/internal/cli"
	"github.com/kodeflow/datamodel/migration/inferrer"
	"github.com/kodeflow/datamodel/migration/planner"
	"github.com/kodeflow/datamodel/renderer"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [schema.prisma]",
	Short: "Infer and apply the migration needed to reach a datamodel",
	Long: `Parse a datamodel source file, validate it, and apply the DDL statements
needed to bring the database at --url in line with it.

With --dry-run, the statements are rendered and printed but never executed.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

const (
	dialectFlag  = "dialect"
	urlFlag      = "url"
	dryRunFlag   = "dry-run"
	pgDriverFlag = "pg-driver"
	versionFlag  = "version"
)

var migrateFlags = map[string]cobraflags.Flag{
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "postgres",
		Usage: "Target SQL dialect (postgres, mysql, sqlite)",
	},
	urlFlag: &cobraflags.StringFlag{
		Name:  urlFlag,
		Value: "",
		Usage: "Database connection URL; required unless --dry-run",
	},
	dryRunFlag: &cobraflags.BoolFlag{
		Name:  dryRunFlag,
		Value: false,
		Usage: "Render the migration but do not execute it",
	},
	pgDriverFlag: &cobraflags.StringFlag{
		Name:  pgDriverFlag,
		Value: "pgx",
		Usage: "Postgres database/sql driver to use (pgx, pq); ignored for other dialects",
	},
	versionFlag: &cobraflags.StringFlag{
		Name:  versionFlag,
		Value: "initial",
		Usage: "Version label recorded in schema_migrations once applied",
	},
}

// NewMigrateCommand returns the cobra command this package exposes.
func NewMigrateCommand() *cobra.Command {
	cobraflags.RegisterMap(migrateCmd, migrateFlags)
	return migrateCmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	astSchema, next, err := cli.BuildPipeline(args[0])
	if err != nil {
		return err
	}

	family, err := cli.ResolveFamily(migrateFlags[dialectFlag].GetString())
	if err != nil {
		return err
	}
	// A `source db { provider = ... }` block in the schema wins over the
	// flag's default, but an explicitly passed --dialect wins over both.
	if !cmd.Flags().Changed(dialectFlag) {
		if declared, ok := cli.DatasourceFamily(astSchema); ok {
			family = declared
		}
	}

	plan := inferrer.Infer(nil, next)
	nodes := planner.Lower(plan)
	statements, err := renderer.Render(nodes, cli.RendererFor(family))
	if err != nil {
		return fmt.Errorf("failed to render migration: %w", err)
	}

	out := cmd.OutOrStdout()
	if migrateFlags[dryRunFlag].GetBool() {
		for _, stmt := range statements {
			fmt.Fprintln(out, stmt+";")
		}
		return nil
	}

	url := migrateFlags[urlFlag].GetString()
	if url == "" {
		url = cli.DatasourceURL(astSchema)
	}
	if url == "" {
		return fmt.Errorf("--url is required unless --dry-run or the schema declares a datasource url")
	}
	driverName := cli.DriverNameFor(family, migrateFlags[pgDriverFlag].GetString())
	db, err := sql.Open(driverName, url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	exec := executor.New(db, family)
	if err := exec.Initialize(ctx); err != nil {
		return err
	}
	if err := exec.Apply(ctx, migrateFlags[versionFlag].GetString(), statements); err != nil {
		return err
	}
	fmt.Fprintf(out, "applied %d statement(s)\n", len(statements))
	return nil
}
