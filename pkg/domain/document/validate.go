package document

import "strings"

// ValidationMode selects how strictly V2 is graded. Strict mode is required
// before a document may back an execution tracker; lenient consumers that
// only inspect or render may downgrade V2 to a warning.
type ValidationMode int

const (
	Strict ValidationMode = iota
	Lenient
)

// Result is the outcome of a validation pass. Valid is false when any
// diagnostic is fatal.
type Result struct {
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Validate checks a parsed document against the structural invariants the
// plan templates rely on. It never mutates the document and never panics;
// every rule violation is a returned diagnostic with a distinct code.
func Validate(doc *Document, mode ValidationMode) Result {
	var diags []Diagnostic

	// V1: a plan needs a title and at least one step.
	if strings.TrimSpace(doc.Title) == "" {
		diags = append(diags, fatal(CodeEmptyDocument, "", "document has no title"))
	}
	if len(doc.Steps) == 0 {
		diags = append(diags, fatal(CodeEmptyDocument, "", "document has no execution steps"))
	}

	// V2: declared numerals must already have been contiguous from 1, i.e.
	// re-indexing was the identity.
	for _, step := range doc.Steps {
		if step.Declared != step.Index {
			d := fatal(CodeNonContiguousSteps, StepPath(step.Index),
				"step declared as %d but parsed at position %d", step.Declared, step.Index)
			if mode == Lenient {
				d.Severity = SeverityWarning
			}
			diags = append(diags, d)
		}
	}

	// V3: a sub-step label's parent component must equal its owning step.
	// A mismatch indicates a parser bug or malformed heading, so it is
	// always fatal.
	for _, step := range doc.Steps {
		for _, sub := range step.SubSteps {
			if parent := sub.ParentLabel(); parent != step.Index {
				diags = append(diags, fatal(CodeSubStepMismatch, SubStepPath(step.Index, sub.Ordinal),
					"sub-step labeled %q nested under step %d", sub.Label, step.Index))
			}
		}
	}

	// V4: duplicate titles within a sibling set.
	seenSteps := make(map[string]bool)
	for _, step := range doc.Steps {
		key := strings.ToLower(strings.TrimSpace(step.Title))
		if key != "" && seenSteps[key] {
			diags = append(diags, warn(CodeDuplicateTitle, StepPath(step.Index),
				"duplicate step title %q", step.Title))
		}
		seenSteps[key] = true

		seenSubs := make(map[string]bool)
		for _, sub := range step.SubSteps {
			subKey := strings.ToLower(strings.TrimSpace(sub.Title))
			if subKey != "" && seenSubs[subKey] {
				diags = append(diags, warn(CodeDuplicateTitle, SubStepPath(step.Index, sub.Ordinal),
					"duplicate sub-step title %q", sub.Title))
			}
			seenSubs[subKey] = true
		}
	}

	// V5: plans without a verification checklist are accepted but flagged.
	if len(doc.TestingItems) == 0 {
		diags = append(diags, warn(CodeNoTestingPlan, "", "manual testing plan is missing or empty"))
	}

	// V6: empty action text. The parser drops empty bullets, so this guards
	// documents built programmatically.
	for _, step := range doc.Steps {
		for i, a := range step.Actions {
			if strings.TrimSpace(a.Text) == "" {
				diags = append(diags, warn(CodeEmptyAction, ActionPath(step.Index, 0, i+1), "action has empty text"))
			}
		}
		for _, sub := range step.SubSteps {
			for i, a := range sub.Actions {
				if strings.TrimSpace(a.Text) == "" {
					diags = append(diags, warn(CodeEmptyAction, ActionPath(step.Index, sub.Ordinal, i+1), "action has empty text"))
				}
			}
		}
	}

	return Result{Valid: !HasFatal(diags), Diagnostics: diags}
}
