package cli

import (
	"fmt"

	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/spf13/cobra"
)

var (
	trackActor string
	trackNote  string
	blockWhy   string
)

var startCmd = &cobra.Command{
	Use:   "start <node>",
	Short: "Mark a node in progress (e.g. 'stepwise start 1.2.1')",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], tracking.StatusInProgress)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <node>",
	Short: "Mark an in-progress node as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], tracking.StatusDone)
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <node>",
	Short: "Skip a node that will not be executed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], tracking.StatusSkipped)
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <node>",
	Short: "Mark a node blocked with a reason",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		actor := services.Config.Actor(trackActor)
		if err := services.Tracker.Block(args[0], blockWhy, actor); err != nil {
			return MapError(err)
		}

		fmt.Printf("Blocked %s: %s\n", args[0], blockWhy)
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <node>",
	Short: "Release a blocked node, restoring its previous state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		actor := services.Config.Actor(trackActor)
		if err := services.Tracker.Unblock(args[0], actor); err != nil {
			return MapError(err)
		}

		state, err := services.Tracker.State(args[0])
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Unblocked %s (now %s)\n", args[0], state)
		return nil
	},
}

func runTransition(path string, to tracking.Status) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}

	actor := services.Config.Actor(trackActor)
	if err := services.Tracker.Transition(path, to, actor, trackNote); err != nil {
		return MapError(err)
	}

	fmt.Printf("%s -> %s\n", path, to)

	ratio, err := services.Tracker.CompletionRatio()
	if err == nil {
		fmt.Printf("Overall completion: %.1f%%\n", ratio*100)
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{startCmd, doneCmd, skipCmd, blockCmd, unblockCmd} {
		cmd.Flags().StringVar(&trackActor, "actor", "", "Actor recorded in the audit trail")
	}
	startCmd.Flags().StringVar(&trackNote, "note", "", "Note recorded with the transition")
	doneCmd.Flags().StringVar(&trackNote, "note", "", "Note recorded with the transition")
	skipCmd.Flags().StringVar(&trackNote, "note", "", "Note recorded with the transition")
	blockCmd.Flags().StringVar(&blockWhy, "reason", "", "Why the node is blocked (required)")
	_ = blockCmd.MarkFlagRequired("reason")

	RootCmd.AddCommand(startCmd)
	RootCmd.AddCommand(doneCmd)
	RootCmd.AddCommand(skipCmd)
	RootCmd.AddCommand(blockCmd)
	RootCmd.AddCommand(unblockCmd)
}
