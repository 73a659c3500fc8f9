package tracking

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
)

// InvalidTransitionError is returned for any refused mutation. The tracker
// is left unchanged; rejection is atomic.
type InvalidTransitionError struct {
	Path   string
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition on %q: %s -> %s (%s)", e.Path, e.From, e.To, e.Reason)
}

// Record is one entry of the append-only transition history.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	NodePath  string    `json:"node_path"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// NodeState is the persisted state of a single node.
type NodeState struct {
	Status      Status `json:"status"`
	BlockedFrom Status `json:"blocked_from,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Actor       string `json:"actor,omitempty"`
}

// ExecutionState is the persistence aggregate for a tracker: the mutable
// overlay saved to disk between invocations. The document itself is never
// part of it.
type ExecutionState struct {
	Mode      string               `json:"mode"`
	Nodes     map[string]NodeState `json:"nodes"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// BlockedNode pairs a blocked node path with its reason.
type BlockedNode struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Actor  string `json:"actor,omitempty"`
}

// Snapshot is an immutable view of tracker state for renderers and queries.
type Snapshot struct {
	Ordered        bool
	States         map[string]Status
	Blocked        []BlockedNode
	DoneActions    int
	SkippedActions int
	TotalActions   int
	Ratio          float64
	Taken          time.Time
}

// Option configures a tracker at construction time.
type Option func(*Tracker)

// Unordered lifts the step ordering constraint so steps may run in
// parallel.
func Unordered() Option {
	return func(t *Tracker) { t.ordered = false }
}

// CountSkippedAsDone controls whether skipped actions count toward the
// completion ratio. Default is true.
func CountSkippedAsDone(count bool) Option {
	return func(t *Tracker) { t.skippedCounts = count }
}

// Tracker records per-node execution status over a fixed, validated
// document. All mutations serialize under one mutex; queries read committed
// state. Every successful transition appends to the history log, which is
// only ever appended to.
type Tracker struct {
	mu            sync.RWMutex
	doc           *document.Document
	ordered       bool
	skippedCounts bool
	nodes         map[string]NodeState
	history       []Record
}

// New creates a tracker over a document. The document must pass strict
// validation; a document with fatal diagnostics is refused.
func New(doc *document.Document, opts ...Option) (*Tracker, error) {
	result := document.Validate(doc, document.Strict)
	if !result.Valid {
		return nil, fmt.Errorf("document failed validation: %d fatal diagnostic(s)", countFatal(result.Diagnostics))
	}

	t := &Tracker{
		doc:           doc,
		ordered:       true,
		skippedCounts: true,
		nodes:         make(map[string]NodeState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Restore rebuilds a tracker from a persisted execution state. Node states
// are taken as committed; history starts empty because the durable trail
// lives in the audit log, not the tracker.
func Restore(doc *document.Document, state *ExecutionState, opts ...Option) (*Tracker, error) {
	if state != nil && state.Mode == "unordered" {
		opts = append(opts, Unordered())
	}
	t, err := New(doc, opts...)
	if err != nil {
		return nil, err
	}
	if state != nil {
		for path, ns := range state.Nodes {
			if _, rerr := doc.Resolve(path); rerr != nil {
				continue // stale path from an older revision of the plan
			}
			t.nodes[path] = ns
		}
	}
	return t, nil
}

func countFatal(diags []document.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == document.SeverityFatal {
			n++
		}
	}
	return n
}

// Ordered reports whether the step ordering constraint is active.
func (t *Tracker) Ordered() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ordered
}

// State returns the effective status of a node. Steps and sub-steps whose
// descendant actions are all terminal derive Done (or Skipped, when every
// action was skipped) automatically.
func (t *Tracker) State(path string) (Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	kind, err := t.doc.Resolve(path)
	if err != nil {
		return "", err
	}
	return t.effectiveLocked(path, kind), nil
}

func (t *Tracker) storedLocked(path string) Status {
	if ns, ok := t.nodes[path]; ok {
		return ns.Status
	}
	return StatusPending
}

func (t *Tracker) effectiveLocked(path string, kind document.NodeKind) Status {
	if kind == document.KindAction {
		return t.storedLocked(path)
	}

	actions := t.descendantActionsLocked(path, kind)
	if len(actions) > 0 {
		done, skipped := 0, 0
		for _, ap := range actions {
			switch t.storedLocked(ap) {
			case StatusDone:
				done++
			case StatusSkipped:
				skipped++
			}
		}
		if done+skipped == len(actions) {
			if done > 0 {
				return StatusDone
			}
			return StatusSkipped
		}
	}
	return t.storedLocked(path)
}

// descendantActionsLocked lists the action paths beneath a step or
// sub-step node.
func (t *Tracker) descendantActionsLocked(path string, kind document.NodeKind) []string {
	stepIndex, err := document.ParentStepIndex(path)
	if err != nil {
		return nil
	}
	if kind == document.KindStep {
		return t.doc.ActionPaths(stepIndex)
	}
	// Sub-step: filter the step's actions by prefix.
	var out []string
	prefix := path + "."
	for _, ap := range t.doc.ActionPaths(stepIndex) {
		if len(ap) > len(prefix) && ap[:len(prefix)] == prefix {
			out = append(out, ap)
		}
	}
	return out
}

// Transition moves a node to the requested status. Moving to Blocked uses
// the note as the required reason; leaving Blocked requires Unblock.
func (t *Tracker) Transition(path string, to Status, actor, note string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	kind, err := t.doc.Resolve(path)
	if err != nil {
		return &InvalidTransitionError{Path: path, To: to, Reason: err.Error()}
	}

	from := t.effectiveLocked(path, kind)

	var event string
	switch to {
	case StatusInProgress:
		if from == StatusBlocked {
			return &InvalidTransitionError{Path: path, From: from, To: to,
				Reason: "node is blocked; call Unblock first"}
		}
		event = EventStart
	case StatusDone:
		event = EventComplete
	case StatusSkipped:
		event = EventSkip
	case StatusBlocked:
		return t.blockLocked(path, kind, note, actor)
	default:
		return &InvalidTransitionError{Path: path, From: from, To: to,
			Reason: fmt.Sprintf("no event reaches status %q", to)}
	}

	after, terr := t.sendLocked(path, kind, from, event)
	if terr != nil {
		return terr
	}

	t.commitLocked(path, from, after, actor, note)
	return nil
}

// Block marks a node as blocked with a required reason. Allowed from
// Pending and InProgress; the pre-block status is recorded so Unblock can
// restore it.
func (t *Tracker) Block(path, reason, actor string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	kind, err := t.doc.Resolve(path)
	if err != nil {
		return &InvalidTransitionError{Path: path, To: StatusBlocked, Reason: err.Error()}
	}
	return t.blockLocked(path, kind, reason, actor)
}

func (t *Tracker) blockLocked(path string, kind document.NodeKind, reason, actor string) error {
	from := t.effectiveLocked(path, kind)
	if reason == "" {
		return &InvalidTransitionError{Path: path, From: from, To: StatusBlocked,
			Reason: "blocking requires a reason"}
	}

	after, err := t.sendLocked(path, kind, from, EventBlock)
	if err != nil {
		return err
	}

	ns := t.nodes[path]
	ns.BlockedFrom = from
	ns.Reason = reason
	ns.Actor = actor
	t.nodes[path] = ns
	t.commitLocked(path, from, after, actor, reason)
	return nil
}

// Unblock releases a blocked node, restoring the status it held before it
// was blocked.
func (t *Tracker) Unblock(path, actor string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	kind, err := t.doc.Resolve(path)
	if err != nil {
		return &InvalidTransitionError{Path: path, Reason: err.Error()}
	}

	from := t.effectiveLocked(path, kind)
	ns := t.nodes[path]

	event := EventUnblock
	if ns.BlockedFrom == StatusInProgress {
		event = EventResume
	}

	after, terr := t.sendLocked(path, kind, from, event)
	if terr != nil {
		return terr
	}

	ns = t.nodes[path]
	ns.BlockedFrom = ""
	ns.Reason = ""
	t.nodes[path] = ns
	t.commitLocked(path, from, after, actor, "")
	return nil
}

// sendLocked runs the FSM for one event and maps refusals to
// InvalidTransitionError. The tracker map is untouched on failure.
func (t *Tracker) sendLocked(path string, kind document.NodeKind, from Status, event string) (Status, error) {
	if from.IsTerminal() {
		return from, &InvalidTransitionError{Path: path, From: from,
			Reason: fmt.Sprintf("node is already %s", from)}
	}

	guard := func(p, ev string) bool {
		return t.guardLocked(p, kind, ev) == nil
	}

	fsm, err := newNodeStateMachine(from, path, guard)
	if err != nil {
		return from, &InvalidTransitionError{Path: path, From: from, Reason: err.Error()}
	}

	after, serr := fsm.Send(event)
	if serr != nil {
		// Prefer the guard's reason when the guard caused the refusal.
		if gerr := t.guardLocked(path, kind, event); gerr != nil {
			return from, gerr
		}
		target, _ := from.TransitionWith(event)
		if target == from {
			target = ""
		}
		return from, &InvalidTransitionError{Path: path, From: from, To: target,
			Reason: fmt.Sprintf("event %q not allowed from %q", event, from)}
	}
	return after, nil
}

// guardLocked enforces the rules the FSM table cannot express: step
// ordering for starts and descendant completion for parent nodes.
func (t *Tracker) guardLocked(path string, kind document.NodeKind, event string) *InvalidTransitionError {
	switch event {
	case EventStart, EventResume:
		if !t.ordered {
			return nil
		}
		stepIndex, err := document.ParentStepIndex(path)
		if err != nil {
			return &InvalidTransitionError{Path: path, To: StatusInProgress, Reason: err.Error()}
		}
		for _, s := range t.doc.Steps {
			if s.Index >= stepIndex {
				break
			}
			if !t.effectiveLocked(document.StepPath(s.Index), document.KindStep).IsTerminal() {
				return &InvalidTransitionError{
					Path: path, From: t.storedLocked(path), To: StatusInProgress,
					Reason: fmt.Sprintf("step %d has unfinished work and this tracker is ordered", s.Index),
				}
			}
		}
	case EventComplete:
		if kind == document.KindAction {
			return nil
		}
		for _, ap := range t.descendantActionsLocked(path, kind) {
			if !t.storedLocked(ap).IsTerminal() {
				return &InvalidTransitionError{
					Path: path, From: t.storedLocked(path), To: StatusDone,
					Reason: fmt.Sprintf("descendant action %q is not done or skipped", ap),
				}
			}
		}
	}
	return nil
}

func (t *Tracker) commitLocked(path string, from, to Status, actor, note string) {
	ns := t.nodes[path]
	ns.Status = to
	if to == StatusInProgress && actor != "" {
		ns.Actor = actor
	}
	t.nodes[path] = ns

	t.history = append(t.history, Record{
		Timestamp: time.Now(),
		NodePath:  path,
		From:      from,
		To:        to,
		Actor:     actor,
		Note:      note,
	})
}

// History returns a copy of the transition log in append order.
func (t *Tracker) History() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Record, len(t.history))
	copy(out, t.history)
	return out
}

// CompletionRatio returns done actions over total actions, in [0,1].
// Skipped actions count as completed unless disabled at construction.
func (t *Tracker) CompletionRatio() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ratioLocked()
}

func (t *Tracker) ratioLocked() float64 {
	total := t.doc.TotalActions()
	if total == 0 {
		return 0
	}
	done, skipped := t.actionCountsLocked()
	completed := done
	if t.skippedCounts {
		completed += skipped
	}
	return float64(completed) / float64(total)
}

func (t *Tracker) actionCountsLocked() (done, skipped int) {
	for _, ap := range t.doc.AllActionPaths() {
		switch t.storedLocked(ap) {
		case StatusDone:
			done++
		case StatusSkipped:
			skipped++
		}
	}
	return done, skipped
}

// BlockedNodes lists blocked nodes with their reasons, ordered by path.
func (t *Tracker) BlockedNodes() []BlockedNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blockedLocked()
}

func (t *Tracker) blockedLocked() []BlockedNode {
	var out []BlockedNode
	for path, ns := range t.nodes {
		if ns.Status == StatusBlocked {
			out = append(out, BlockedNode{Path: path, Reason: ns.Reason, Actor: ns.Actor})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Snapshot captures the committed state for rendering. The snapshot is a
// pure value; mutating the tracker afterwards does not affect it.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]Status)
	for _, step := range t.doc.Steps {
		sp := document.StepPath(step.Index)
		states[sp] = t.effectiveLocked(sp, document.KindStep)
		for _, sub := range step.SubSteps {
			ssp := document.SubStepPath(step.Index, sub.Ordinal)
			states[ssp] = t.effectiveLocked(ssp, document.KindSubStep)
		}
		for _, ap := range t.doc.ActionPaths(step.Index) {
			states[ap] = t.storedLocked(ap)
		}
	}

	done, skipped := t.actionCountsLocked()
	return Snapshot{
		Ordered:        t.ordered,
		States:         states,
		Blocked:        t.blockedLocked(),
		DoneActions:    done,
		SkippedActions: skipped,
		TotalActions:   t.doc.TotalActions(),
		Ratio:          t.ratioLocked(),
		Taken:          time.Now(),
	}
}

// Export returns the persistable execution state.
func (t *Tracker) Export() *ExecutionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	mode := "ordered"
	if !t.ordered {
		mode = "unordered"
	}
	nodes := make(map[string]NodeState, len(t.nodes))
	for k, v := range t.nodes {
		nodes[k] = v
	}
	return &ExecutionState{Mode: mode, Nodes: nodes, UpdatedAt: time.Now()}
}
