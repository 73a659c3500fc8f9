// Package report projects documents and tracker snapshots to text. All
// rendering is pure; nothing here mutates a document or a tracker.
package report

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
)

// Markdown re-serializes a document to the canonical section and heading
// conventions. For a valid document, parsing the output yields an identical
// tree.
func Markdown(doc *document.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", doc.Title)
	if doc.Tagline != "" {
		fmt.Fprintf(&b, "\n%s\n", doc.Tagline)
	}

	if len(doc.SummaryBullets) > 0 {
		b.WriteString("\n## Summary of changes\n\n")
		for _, s := range doc.SummaryBullets {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	b.WriteString("\n## Execution Steps\n")
	for _, step := range doc.Steps {
		fmt.Fprintf(&b, "\n### Step %d: %s\n", step.Index, step.Title)
		if step.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", step.Description)
		}
		if len(step.Actions) > 0 {
			b.WriteString("\n")
			for _, a := range step.Actions {
				fmt.Fprintf(&b, "- %s\n", a.Text)
			}
		}
		for _, sub := range step.SubSteps {
			fmt.Fprintf(&b, "\n#### %d.%d: %s\n\n", step.Index, sub.Ordinal, sub.Title)
			for _, a := range sub.Actions {
				fmt.Fprintf(&b, "- %s\n", a.Text)
			}
		}
	}

	if len(doc.TestingItems) > 0 {
		b.WriteString("\n## Manual testing plan\n\n")
		for _, item := range doc.TestingItems {
			fmt.Fprintf(&b, "- %s\n", item.Text)
		}
	}

	return b.String()
}

// StepProgress summarizes one step for a progress report.
type StepProgress struct {
	Index   int
	Title   string
	Status  tracking.Status
	Done    int
	Skipped int
	Total   int
}

// Percent returns the completed share of the step's actions, skipped
// included, as 0-100.
func (p StepProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done+p.Skipped) / float64(p.Total) * 100
}

// BuildProgress computes per-step progress from a snapshot.
func BuildProgress(doc *document.Document, snap tracking.Snapshot) []StepProgress {
	out := make([]StepProgress, 0, len(doc.Steps))
	for _, step := range doc.Steps {
		p := StepProgress{
			Index:  step.Index,
			Title:  step.Title,
			Status: snap.States[document.StepPath(step.Index)],
		}
		for _, ap := range doc.ActionPaths(step.Index) {
			p.Total++
			switch snap.States[ap] {
			case tracking.StatusDone:
				p.Done++
			case tracking.StatusSkipped:
				p.Skipped++
			}
		}
		out = append(out, p)
	}
	return out
}

// Progress renders a plain-text progress report: per-step completion,
// blocked nodes with reasons and the overall ratio.
func Progress(doc *document.Document, snap tracking.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan: %s\n", doc.Title)
	fmt.Fprintf(&b, "Overall: %.1f%% (%d/%d actions done", snap.Ratio*100, snap.DoneActions, snap.TotalActions)
	if snap.SkippedActions > 0 {
		fmt.Fprintf(&b, ", %d skipped", snap.SkippedActions)
	}
	b.WriteString(")\n\n")

	for _, p := range BuildProgress(doc, snap) {
		fmt.Fprintf(&b, "Step %d: %-40s [%s] %.0f%% (%d/%d)\n",
			p.Index, p.Title, p.Status, p.Percent(), p.Done+p.Skipped, p.Total)
	}

	if len(snap.Blocked) > 0 {
		b.WriteString("\nBlocked:\n")
		for _, bn := range snap.Blocked {
			fmt.Fprintf(&b, "- %s: %s", bn.Path, bn.Reason)
			if bn.Actor != "" {
				fmt.Fprintf(&b, " (%s)", bn.Actor)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ValidationReport renders validator output as a flat diagnostic listing.
func ValidationReport(result document.Result) string {
	var b strings.Builder

	if result.Valid {
		b.WriteString("Document is valid")
	} else {
		b.WriteString("Document is INVALID")
	}
	fmt.Fprintf(&b, " (%d diagnostic(s))\n", len(result.Diagnostics))

	for _, d := range result.Diagnostics {
		fmt.Fprintf(&b, "- %s\n", d.String())
	}
	return b.String()
}
