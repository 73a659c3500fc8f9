package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/spf13/cobra"
)

var exportCheck bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the parsed plan as JSON",
	Long: `Export the parsed plan as JSON for external consumers.

With --check the export is validated against the document JSON schema
before printing; schema violations fail the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		doc, err := services.Documents.Get()
		if err != nil {
			return MapError(err)
		}

		data, err := document.MarshalJSONExport(doc)
		if err != nil {
			return err
		}

		if exportCheck {
			violations, err := document.CheckJSONExport(data)
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				fmt.Fprintf(os.Stderr, "Schema violations (%d):\n", len(violations))
				for _, v := range violations {
					fmt.Fprintf(os.Stderr, "- %s\n", v)
				}
				return NewCLIError("export does not satisfy the document schema",
					"Run 'stepwise validate' and fix the reported diagnostics", nil)
			}
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportCheck, "check", false,
		"Validate the export against the document JSON schema")
	RootCmd.AddCommand(exportCmd)
}
