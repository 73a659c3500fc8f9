package cli

import (
	"fmt"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <plan.md>",
	Short: "Import a plan document from a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		doc, diags, err := services.Documents.Import(args[0])
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Imported plan: %s\n", doc.Title)
		fmt.Printf("Steps: %d, actions: %d, testing items: %d\n",
			len(doc.Steps), doc.TotalActions(), len(doc.TestingItems))

		printDiagnostics(diags)

		result := document.Validate(doc, document.Strict)
		if !result.Valid {
			fmt.Println("\nWARNING: document has fatal diagnostics and cannot be tracked.")
			fmt.Println("Run 'stepwise validate' for details.")
		}
		return nil
	},
}

func printDiagnostics(diags []document.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Printf("\nParse diagnostics (%d):\n", len(diags))
	for _, d := range diags {
		fmt.Printf("- %s\n", d.String())
	}
}

func init() {
	RootCmd.AddCommand(importCmd)
}
