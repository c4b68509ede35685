// Package validate implements the `datamodelctl validate` subcommand: parse
// and run every semantic check against a datamodel source file, printing
// either confirmation or the accumulated diagnostics.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeflow/datamodel/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema.prisma]",
	Short: "Check a datamodel source file for semantic errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

// NewValidateCommand returns the cobra command this package exposes.
func NewValidateCommand() *cobra.Command {
	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := cli.BuildIDM(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "datamodel is valid")
	return nil
}
