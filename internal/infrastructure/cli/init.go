package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/stepwise/internal/infrastructure/config"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	initUnordered bool
	initActor     string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a stepwise workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(cwd)
		if repo.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}

		if err := repo.Initialize(); err != nil {
			return err
		}

		cfg := &config.Config{}
		if initUnordered {
			cfg.Mode = "unordered"
		}
		if initActor != "" {
			cfg.DefaultActor = initActor
		}
		if cfg.Mode != "" || cfg.DefaultActor != "" {
			if err := config.Save(cwd, cfg); err != nil {
				return err
			}
		}

		fmt.Printf("Initialized stepwise workspace in %s/%s\n", cwd, storage.StepwiseDir)
		fmt.Println("Next: 'stepwise import <plan.md>'")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initUnordered, "unordered", false,
		"Allow steps to run in parallel (default is strict step ordering)")
	initCmd.Flags().StringVar(&initActor, "actor", "",
		"Default actor recorded on transitions")
	RootCmd.AddCommand(initCmd)
}
