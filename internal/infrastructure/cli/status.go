package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/stepwise/pkg/domain/report"
	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/spf13/cobra"
)

var statusJSON bool

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	wipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a high-level summary of plan execution",
	RunE:  runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status
type statusJSONOutput struct {
	Plan       string           `json:"plan"`
	Mode       string           `json:"mode"`
	Completion float64          `json:"completion"`
	Actions    actionCounts     `json:"actions"`
	Steps      []stepJSONOutput `json:"steps"`
	Blocked    []blockedOutput  `json:"blocked,omitempty"`
}

type actionCounts struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
}

type stepJSONOutput struct {
	Index   int     `json:"index"`
	Title   string  `json:"title"`
	Status  string  `json:"status"`
	Percent float64 `json:"percent"`
}

type blockedOutput struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Actor  string `json:"actor,omitempty"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}

	snap, doc, err := services.Tracker.Snapshot()
	if err != nil {
		return MapError(err)
	}

	progress := report.BuildProgress(doc, snap)

	if statusJSON {
		mode := "ordered"
		if !snap.Ordered {
			mode = "unordered"
		}
		output := statusJSONOutput{
			Plan:       doc.Title,
			Mode:       mode,
			Completion: snap.Ratio,
			Actions: actionCounts{
				Total:   snap.TotalActions,
				Done:    snap.DoneActions,
				Skipped: snap.SkippedActions,
			},
		}
		for _, p := range progress {
			output.Steps = append(output.Steps, stepJSONOutput{
				Index:   p.Index,
				Title:   p.Title,
				Status:  string(p.Status),
				Percent: p.Percent(),
			})
		}
		for _, b := range snap.Blocked {
			output.Blocked = append(output.Blocked, blockedOutput{Path: b.Path, Reason: b.Reason, Actor: b.Actor})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Plan: %s", doc.Title)))
	fmt.Printf("Overall: %.1f%% (%d/%d actions done", snap.Ratio*100, snap.DoneActions, snap.TotalActions)
	if snap.SkippedActions > 0 {
		fmt.Printf(", %d skipped", snap.SkippedActions)
	}
	fmt.Println(")")
	if !snap.Ordered {
		fmt.Println("Mode: unordered (steps may run in parallel)")
	}
	fmt.Println()

	for _, p := range progress {
		fmt.Printf("%s Step %d: %-40s %.0f%% (%d/%d)\n",
			statusBadge(p.Status), p.Index, p.Title, p.Percent(), p.Done+p.Skipped, p.Total)
	}

	if len(snap.Blocked) > 0 {
		fmt.Println(blockedStyle.Render("\nBlocked:"))
		for _, b := range snap.Blocked {
			fmt.Printf("- %s: %s\n", b.Path, b.Reason)
		}
	}

	fmt.Printf("\nAudit Trail: .stepwise/events.jsonl\n")
	return nil
}

// statusBadge returns the styled display prefix for a status.
func statusBadge(status tracking.Status) string {
	switch status {
	case tracking.StatusDone:
		return doneStyle.Render("[D]")
	case tracking.StatusInProgress:
		return wipStyle.Render("[W]")
	case tracking.StatusBlocked:
		return blockedStyle.Render("[B]")
	case tracking.StatusSkipped:
		return skippedStyle.Render("[S]")
	default:
		return "[ ]"
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
