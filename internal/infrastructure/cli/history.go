package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyNode   string
	historyVerify bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit trail of plan execution",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		if historyVerify {
			violations, err := services.Audit.Verify()
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Println(v)
				}
				return NewCLIError("audit trail integrity check failed",
					"The events file may have been edited by hand", nil)
			}
			fmt.Println("Audit trail integrity: OK")
			return nil
		}

		trail, err := services.Audit.Trail()
		if err != nil {
			return err
		}
		if historyNode != "" {
			trail, err = services.Audit.TrailForNode(historyNode)
			if err != nil {
				return err
			}
		}

		if len(trail) == 0 {
			fmt.Println("No events recorded yet.")
			return nil
		}

		for _, e := range trail {
			node := e.NodePath
			if node == "" {
				node = "-"
			}
			fmt.Printf("%s  %-22s %-8s %s\n",
				e.Timestamp.Format(time.RFC3339), e.Type, node, e.Actor)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyNode, "node", "", "Filter events by node path")
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "Verify the event hash chain")
	RootCmd.AddCommand(historyCmd)
}
