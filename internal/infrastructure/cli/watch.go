package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/stepwise/internal/infrastructure/watch"
	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <plan.md>",
	Short: "Re-parse and re-validate a plan file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		target := args[0]

		onChange := func(ev watch.ChangeEvent) {
			if ev.ChangeType == "remove" {
				fmt.Printf("%s removed; keeping last imported version\n", ev.Path)
				return
			}

			data, err := os.ReadFile(ev.Path) // #nosec G304 -- user-chosen watch target
			if err != nil {
				fmt.Fprintf(os.Stderr, "read %s: %v\n", ev.Path, err)
				return
			}

			doc, diags, err := services.Documents.Reparse(string(data))
			if err != nil {
				fmt.Fprintf(os.Stderr, "reparse: %v\n", err)
				return
			}

			result := document.Validate(doc, document.Strict)
			verdict := "valid"
			if !result.Valid {
				verdict = "INVALID"
			}
			fmt.Printf("[%s] reparsed %q: %d steps, %d parse diagnostic(s), %s\n",
				time.Now().Format("15:04:05"), doc.Title, len(doc.Steps), len(diags), verdict)
		}

		watcher, err := watch.NewFileWatcher(target, watchDebounce, onChange)
		if err != nil {
			return err
		}

		fmt.Printf("Watching %s (ctrl-c to stop)\n", target)
		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"Quiet window before a change triggers a re-parse")
	RootCmd.AddCommand(watchCmd)
}
