// Package datamodelctl wires the validate, diff, and migrate subcommands
// into a single cobra command tree, following the base project's
// cmd/packagemigrator root-command pattern.
package datamodelctl

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kodeflow/datamodel/cmd/datamodelctl/diff"
	"github.com/kodeflow/datamodel/cmd/datamodelctl/migrate"
	"github.com/kodeflow/datamodel/cmd/datamodelctl/validate"
)

const envPrefix = "DATAMODEL"

var rootCmd = &cobra.Command{
	Use:   "datamodelctl",
	Short: "Validate, diff, and migrate declarative datamodels",
	Long: `datamodelctl parses a .prisma-style datamodel, validates it, and can infer
and apply the SQL migration needed to bring a target database in line with
it, across PostgreSQL, MySQL, and SQLite.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a datamodel.yaml/.toml/.json config file (datasource url, dialect, ignored dialects)")
}

// Execute adds every subcommand to the root command and runs it. Called once
// by main.main.
func Execute(args ...string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	rootCmd.SetArgs(args)
	rootCmd.AddCommand(validate.NewValidateCommand())
	rootCmd.AddCommand(diff.NewDiffCommand())
	rootCmd.AddCommand(migrate.NewMigrateCommand())

	cobra.OnInitialize(loadConfigFile)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1) //revive:disable-line:deep-exit
	}
}

// loadConfigFile merges configFile into viper if one was given with --config.
// A missing or unreadable file is a hard error; an omitted flag is a no-op,
// since every setting it could supply also has a flag/env-var default.
func loadConfigFile() {
	if configFile == "" {
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		cobra.CheckErr(err)
	}
}
