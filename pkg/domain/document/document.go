// Package document defines the plan document model: a validated, immutable
// tree of Steps, SubSteps and Actions parsed from free-form plan text.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is the root of a parsed plan. It is constructed once by the
// parser and never mutated afterwards; trackers and renderers only read it.
type Document struct {
	Title          string        `json:"title" yaml:"title"`
	Tagline        string        `json:"tagline" yaml:"tagline"`
	SummaryBullets []string      `json:"summary_bullets" yaml:"summary_bullets"`
	Steps          []Step        `json:"steps" yaml:"steps"`
	TestingItems   []TestingItem `json:"testing_items" yaml:"testing_items"`
}

// Step is a top-level unit of the execution outline. Index is assigned by
// parse order (1-based, contiguous); Declared keeps the numeral as authored
// so the validator can flag numbering slips.
//
// A Step may carry Actions directly, SubSteps, or both: bullets appearing
// before the first sub-step heading become the Step's own Actions.
type Step struct {
	Index       int       `json:"index" yaml:"index"`
	Declared    int       `json:"declared" yaml:"declared"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	SubSteps    []SubStep `json:"sub_steps,omitempty" yaml:"sub_steps,omitempty"`
	Actions     []Action  `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// SubStep is a second-level outline unit. Label is the raw authored label
// (e.g. "2.3"); Ordinal is the local position by parse order (1-based).
type SubStep struct {
	Label   string   `json:"label" yaml:"label"`
	Ordinal int      `json:"ordinal" yaml:"ordinal"`
	Title   string   `json:"title" yaml:"title"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// Action is a single bullet. Text keeps the raw markup so a document can be
// re-serialized byte-for-byte; References holds the path-like tokens
// extracted from that markup.
type Action struct {
	Text       string          `json:"text" yaml:"text"`
	References []PathReference `json:"references,omitempty" yaml:"references,omitempty"`
}

// TestingItem is one entry of the manual testing plan. Items are an
// independent flat checklist with no required linkage to Actions.
type TestingItem struct {
	Text string `json:"text" yaml:"text"`
}

// RefKind classifies a path reference. Classification is heuristic and
// purely descriptive; it is never checked against a real filesystem.
type RefKind string

const (
	RefFile      RefKind = "file"
	RefDirectory RefKind = "directory"
	RefCommand   RefKind = "command"
	RefUnknown   RefKind = "unknown"
)

// PathReference is a bolded or code-spanned token that looks like a path,
// filename or shell token.
type PathReference struct {
	Raw  string  `json:"raw" yaml:"raw"`
	Kind RefKind `json:"kind" yaml:"kind"`
}

// NodeKind identifies the tree level a node path points at.
type NodeKind int

const (
	KindStep NodeKind = iota
	KindSubStep
	KindAction
)

func (k NodeKind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindSubStep:
		return "sub-step"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Node paths address tree nodes as dotted ordinals: "2" is Step 2, "2.3" is
// its third sub-step, "2.3.1" the first action under it. Direct actions of a
// step use the reserved sub-step ordinal 0, so "4.0.2" is the second direct
// action of Step 4. This keeps the direct-actions variant addressable
// without synthesizing an empty SubStep.

// StepPath returns the node path for a step index.
func StepPath(step int) string { return strconv.Itoa(step) }

// SubStepPath returns the node path for a sub-step.
func SubStepPath(step, ordinal int) string {
	return fmt.Sprintf("%d.%d", step, ordinal)
}

// ActionPath returns the node path for an action. Pass ordinal 0 for a
// step's direct actions.
func ActionPath(step, ordinal, action int) string {
	return fmt.Sprintf("%d.%d.%d", step, ordinal, action)
}

// ParentStepIndex extracts the leading step component of a node path.
func ParentStepIndex(path string) (int, error) {
	head := path
	if i := strings.IndexByte(path, '.'); i >= 0 {
		head = path[:i]
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid node path: %q", path)
	}
	return n, nil
}

// Step returns the step with the given index, or nil.
func (d *Document) Step(index int) *Step {
	for i := range d.Steps {
		if d.Steps[i].Index == index {
			return &d.Steps[i]
		}
	}
	return nil
}

// Resolve looks up a node path and reports its kind. It returns an error
// for paths that do not address a node of the document.
func (d *Document) Resolve(path string) (NodeKind, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid node path: %q", path)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid node path: %q", path)
		}
		nums[i] = n
	}

	step := d.Step(nums[0])
	if step == nil {
		return 0, fmt.Errorf("no such step: %q", path)
	}
	if len(parts) == 1 {
		return KindStep, nil
	}

	// Ordinal 0 addresses the step's direct-actions slot.
	if nums[1] == 0 {
		if len(parts) == 2 {
			return 0, fmt.Errorf("no such node: %q", path)
		}
		if nums[2] < 1 || nums[2] > len(step.Actions) {
			return 0, fmt.Errorf("no such action: %q", path)
		}
		return KindAction, nil
	}

	if nums[1] > len(step.SubSteps) {
		return 0, fmt.Errorf("no such sub-step: %q", path)
	}
	sub := &step.SubSteps[nums[1]-1]
	if len(parts) == 2 {
		return KindSubStep, nil
	}
	if nums[2] < 1 || nums[2] > len(sub.Actions) {
		return 0, fmt.Errorf("no such action: %q", path)
	}
	return KindAction, nil
}

// ActionPaths returns the node paths of every action owned by the step with
// the given index, direct actions first, in document order.
func (d *Document) ActionPaths(stepIndex int) []string {
	step := d.Step(stepIndex)
	if step == nil {
		return nil
	}
	var paths []string
	for i := range step.Actions {
		paths = append(paths, ActionPath(step.Index, 0, i+1))
	}
	for _, sub := range step.SubSteps {
		for i := range sub.Actions {
			paths = append(paths, ActionPath(step.Index, sub.Ordinal, i+1))
		}
	}
	return paths
}

// AllActionPaths returns every action path in the document, in order.
func (d *Document) AllActionPaths() []string {
	var paths []string
	for _, s := range d.Steps {
		paths = append(paths, d.ActionPaths(s.Index)...)
	}
	return paths
}

// TotalActions counts all actions across all steps.
func (d *Document) TotalActions() int {
	n := 0
	for _, s := range d.Steps {
		n += len(s.Actions)
		for _, sub := range s.SubSteps {
			n += len(sub.Actions)
		}
	}
	return n
}

// ParentLabel returns the step component of a sub-step label ("2.3" -> 2).
// It returns 0 when the label does not follow the "<N>.<M>" form.
func (s *SubStep) ParentLabel() int {
	i := strings.IndexByte(s.Label, '.')
	if i <= 0 {
		return 0
	}
	n, err := strconv.Atoi(s.Label[:i])
	if err != nil {
		return 0
	}
	return n
}
