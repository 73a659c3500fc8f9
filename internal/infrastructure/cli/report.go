package cli

import (
	"fmt"

	"github.com/felixgeelhaar/stepwise/pkg/domain/report"
	"github.com/spf13/cobra"
)

var reportMarkdown bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a progress report or re-serialize the plan",
	Long: `Render a progress report over the tracked plan.

With --markdown the plan document itself is re-serialized to the
canonical heading conventions instead, which round-trips through the
parser unchanged for valid documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		if reportMarkdown {
			doc, err := services.Documents.Get()
			if err != nil {
				return MapError(err)
			}
			fmt.Print(report.Markdown(doc))
			return nil
		}

		snap, doc, err := services.Tracker.Snapshot()
		if err != nil {
			return MapError(err)
		}
		fmt.Print(report.Progress(doc, snap))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportMarkdown, "markdown", false,
		"Re-serialize the plan document instead of reporting progress")
	RootCmd.AddCommand(reportCmd)
}
