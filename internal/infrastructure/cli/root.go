package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "stepwise",
	Version: Version,
	Short:   "A plan document model and execution tracker",
	Long: `Stepwise parses multi-step plan documents into a validated tree
and tracks their execution:
1. What does the plan say, exactly?
2. Is its structure sound?
3. How far along are we, and what is blocked?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
