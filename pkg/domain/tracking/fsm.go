package tracking

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// nodeContext carries per-transition data into statekit guards.
type nodeContext struct {
	Path  string
	Guard func(path, event string) bool
}

// nodeStateMachine enforces the node transition rules. The machine is built
// per transition attempt from the node's current status, mirroring the
// validTransitions table in status.go.
type nodeStateMachine struct {
	interpreter *statekit.Interpreter[nodeContext]
}

func newNodeStateMachine(initial Status, path string, guard func(string, string) bool) (*nodeStateMachine, error) {
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	builder := statekit.NewMachine[nodeContext]("plan-node").
		WithInitial(statekit.StateID(initial)).
		WithContext(nodeContext{Path: path, Guard: guard}).
		WithGuard("orderGuard", func(ctx nodeContext, e statekit.Event) bool {
			return ctx.Guard(ctx.Path, string(e.Type))
		})

	builder.State(statekit.StateID(StatusPending)).
		On(EventStart).Target(statekit.StateID(StatusInProgress)).Guard("orderGuard").
		On(EventBlock).Target(statekit.StateID(StatusBlocked)).
		On(EventSkip).Target(statekit.StateID(StatusSkipped)).
		Done()

	builder.State(statekit.StateID(StatusInProgress)).
		On(EventComplete).Target(statekit.StateID(StatusDone)).Guard("orderGuard").
		On(EventBlock).Target(statekit.StateID(StatusBlocked)).
		On(EventSkip).Target(statekit.StateID(StatusSkipped)).
		Done()

	builder.State(statekit.StateID(StatusBlocked)).
		On(EventUnblock).Target(statekit.StateID(StatusPending)).
		On(EventResume).Target(statekit.StateID(StatusInProgress)).Guard("orderGuard").
		Done()

	builder.State(statekit.StateID(StatusDone)).Done()
	builder.State(statekit.StateID(StatusSkipped)).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build node state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &nodeStateMachine{interpreter: interpreter}, nil
}

// Send attempts an event and returns the resulting status. statekit leaves
// the state unchanged when no transition matches or a guard rejects, so an
// unchanged state means the event was refused.
func (m *nodeStateMachine) Send(event string) (Status, error) {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()

	if before == after {
		return before, fmt.Errorf("event %q refused in state %q", event, before)
	}
	return after, nil
}

func (m *nodeStateMachine) Current() Status {
	return Status(m.interpreter.State().Value)
}
