package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive TUI view of the tracked plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("STEPWISE_SKIP_BOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialBoardModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var boardBaseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var boardHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

type boardModel struct {
	table      table.Model
	plan       string
	completion float64
	blocked    []string
	err        error
}

func initialBoardModel() boardModel {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return boardModel{err: err}
	}

	snap, doc, err := services.Tracker.Snapshot()
	if err != nil {
		return boardModel{err: MapError(err)}
	}

	columns := []table.Column{
		{Title: "Node", Width: 8},
		{Title: "Status", Width: 12},
		{Title: "Title / Action", Width: 56},
	}

	rows := []table.Row{}
	for _, step := range doc.Steps {
		sp := document.StepPath(step.Index)
		rows = append(rows, table.Row{sp, string(snap.States[sp]), step.Title})
		for i, a := range step.Actions {
			ap := document.ActionPath(step.Index, 0, i+1)
			rows = append(rows, table.Row{ap, string(snap.States[ap]), truncate(a.Text, 56)})
		}
		for _, sub := range step.SubSteps {
			ssp := document.SubStepPath(step.Index, sub.Ordinal)
			rows = append(rows, table.Row{ssp, string(snap.States[ssp]), sub.Title})
			for i, a := range sub.Actions {
				ap := document.ActionPath(step.Index, sub.Ordinal, i+1)
				rows = append(rows, table.Row{ap, string(snap.States[ap]), truncate(a.Text, 56)})
			}
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	blockedMsgs := []string{}
	for _, b := range snap.Blocked {
		blockedMsgs = append(blockedMsgs, fmt.Sprintf("%s: %s", b.Path, b.Reason))
	}

	return boardModel{
		table:      t,
		plan:       doc.Title,
		completion: snap.Ratio,
		blocked:    blockedMsgs,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading board: %v\nPress q to quit.", m.err)
	}

	header := boardHeaderStyle.Render(fmt.Sprintf("%s | %.1f%% complete", m.plan, m.completion*100))

	blockedView := ""
	if len(m.blocked) > 0 {
		blockedView = blockedStyle.Render("\nBLOCKED:\n")
		for _, b := range m.blocked {
			blockedView += fmt.Sprintf("- %s\n", b)
		}
	} else {
		blockedView = doneStyle.Render("\nNothing blocked")
	}

	return boardBaseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			blockedView,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
