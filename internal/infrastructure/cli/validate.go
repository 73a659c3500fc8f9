package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/report"
	"github.com/spf13/cobra"
)

var (
	validateLenient bool
	validateJSON    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the imported plan against its structural invariants",
	Long: `Check the imported plan against its structural invariants.

Fatal diagnostics block execution tracking; warnings do not.
Use --lenient to downgrade step-numbering violations to warnings
for documents that are only inspected, never tracked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		mode := document.Strict
		if validateLenient {
			mode = document.Lenient
		}

		result, err := services.Documents.Validate(mode)
		if err != nil {
			return MapError(err)
		}

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Print(report.ValidationReport(result))
		if !result.Valid {
			return NewCLIError("validation failed", "Fix the fatal diagnostics above and re-import", nil)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateLenient, "lenient", false,
		"Downgrade step-numbering violations (V2) to warnings")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(validateCmd)
}
