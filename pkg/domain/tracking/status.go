// Package tracking overlays run-time execution state on an immutable plan
// document. One Tracker is one mutable resource; any number of trackers may
// share a document.
package tracking

import (
	"encoding/json"
	"fmt"
)

// Status is the execution state of a single plan node.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
	StatusSkipped    Status = "skipped"
)

// Transition events. "unblock" restores a node blocked from pending,
// "resume" one blocked from in_progress; Tracker.Unblock picks the right
// one from the recorded pre-block state.
const (
	EventStart    = "start"
	EventComplete = "complete"
	EventBlock    = "block"
	EventUnblock  = "unblock"
	EventResume   = "resume"
	EventSkip     = "skip"
)

// validTransitions maps current status -> event -> target status.
var validTransitions = map[Status]map[string]Status{
	StatusPending: {
		EventStart: StatusInProgress,
		EventBlock: StatusBlocked,
		EventSkip:  StatusSkipped,
	},
	StatusInProgress: {
		EventComplete: StatusDone,
		EventBlock:    StatusBlocked,
		EventSkip:     StatusSkipped,
	},
	StatusBlocked: {
		EventUnblock: StatusPending,
		EventResume:  StatusInProgress,
	},
	StatusDone:    {},
	StatusSkipped: {},
}

// AllStatuses returns every valid status.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone, StatusBlocked, StatusSkipped}
}

// IsValid returns true for a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusBlocked, StatusSkipped:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further work is expected on the node.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusSkipped
}

// IsBlocked reports whether the node is waiting on an explicit unblock.
func (s Status) IsBlocked() bool { return s == StatusBlocked }

// CanTransitionTo returns true if some event moves this status to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionWith returns the target status for an event, or an error when
// the event is not allowed from this status.
func (s Status) TransitionWith(event string) (Status, error) {
	target, ok := validTransitions[s][event]
	if !ok {
		return s, fmt.Errorf("event %q not allowed from status %q", event, s)
	}
	return target, nil
}

// ValidEvents returns the events accepted from this status.
func (s Status) ValidEvents() []string {
	var events []string
	for event := range validTransitions[s] {
		events = append(events, event)
	}
	return events
}

// DisplayName returns a human-readable name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	case StatusSkipped:
		return "Skipped"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler. An empty string is read as
// pending so sparse state files stay loadable.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = StatusPending
		return nil
	}
	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid status: %q", str)
	}
	*s = status
	return nil
}
