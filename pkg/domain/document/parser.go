package document

import (
	"regexp"
	"strings"
)

var (
	stepHeadingRe    = regexp.MustCompile(`(?i)^step\s+(\d+)\s*[:.]\s*(.+)$`)
	subStepHeadingRe = regexp.MustCompile(`^(\d+)\.(\d+)\s*[:.]\s*(.+)$`)
)

// Parse turns raw plan text into a Document plus diagnostics. Parsing is
// always recoverable: malformed spans yield a partial tree and warnings
// rather than an error, and validation is a separate pass (Validate).
func Parse(raw string) (*Document, []Diagnostic) {
	sections, diags := Sectionize(raw)

	doc := &Document{
		Title:          sections.Title,
		Tagline:        sections.Tagline,
		SummaryBullets: collectBullets(sections.Summary),
	}
	for _, text := range collectBullets(sections.Testing) {
		doc.TestingItems = append(doc.TestingItems, TestingItem{Text: text})
	}

	steps, outlineDiags := parseOutline(sections.Execution)
	doc.Steps = steps
	diags = append(diags, outlineDiags...)

	return doc, diags
}

// parseOutline builds the Step tree from the execution-steps span. Level-3
// headings open a Step, level-4 headings open a SubStep, bullet lines become
// Actions. Steps are re-indexed by parse order; numbering gaps are reported
// as P1 warnings but never block parsing.
func parseOutline(lines []string) ([]Step, []Diagnostic) {
	var (
		diags       []Diagnostic
		steps       []Step
		current     *Step
		currentSub  *SubStep
		description []string
	)

	flushDescription := func() {
		if current != nil && len(description) > 0 {
			current.Description = strings.TrimSpace(strings.Join(description, "\n"))
		}
		description = nil
	}

	flushSub := func() {
		if current != nil && currentSub != nil {
			current.SubSteps = append(current.SubSteps, *currentSub)
		}
		currentSub = nil
	}

	flushStep := func() {
		flushDescription()
		flushSub()
		if current != nil {
			steps = append(steps, *current)
		}
		current = nil
	}

	for _, line := range lines {
		level := headingLevel(line)

		switch level {
		case 3:
			flushStep()
			text := headingText(line)
			m := stepHeadingRe.FindStringSubmatch(text)
			if m == nil {
				diags = append(diags, warn(CodeMalformedHeading, "",
					"level-3 heading %q does not match \"Step <N>: <title>\"", text))
				continue
			}
			declared := mustAtoi(m[1])
			index := len(steps) + 1
			if declared != index {
				diags = append(diags, warn(CodeNumberingGap, StepPath(index),
					"step numbered %d parsed at position %d; sequence re-indexed", declared, index))
			}
			current = &Step{
				Index:    index,
				Declared: declared,
				Title:    strings.TrimSpace(m[2]),
			}

		case 4:
			if current == nil {
				diags = append(diags, warn(CodeMalformedHeading, "",
					"sub-step heading %q appears before any step", headingText(line)))
				continue
			}
			flushDescription()
			flushSub()
			text := headingText(line)
			m := subStepHeadingRe.FindStringSubmatch(text)
			if m == nil {
				diags = append(diags, warn(CodeMalformedHeading, StepPath(current.Index),
					"level-4 heading %q does not match \"<N>.<M>: <title>\"", text))
				continue
			}
			ordinal := len(current.SubSteps) + 1
			declaredLocal := mustAtoi(m[2])
			if declaredLocal != ordinal {
				diags = append(diags, warn(CodeNumberingGap, SubStepPath(current.Index, ordinal),
					"sub-step numbered %s.%s parsed at position %d; sequence re-indexed", m[1], m[2], ordinal))
			}
			currentSub = &SubStep{
				Label:   m[1] + "." + m[2],
				Ordinal: ordinal,
				Title:   strings.TrimSpace(m[3]),
			}

		default:
			text, isBullet := bulletText(line)
			switch {
			case isBullet && text != "":
				action := Action{Text: text, References: ExtractReferences(text)}
				if currentSub != nil {
					currentSub.Actions = append(currentSub.Actions, action)
				} else if current != nil {
					flushDescription()
					current.Actions = append(current.Actions, action)
				}
			case current != nil && currentSub == nil && len(current.Actions) == 0:
				if strings.TrimSpace(line) != "" || len(description) > 0 {
					description = append(description, line)
				}
			}
		}
	}
	flushStep()

	return steps, diags
}

func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
