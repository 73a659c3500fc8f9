package application

import (
	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/events"
	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

// TrackerService applies execution transitions against the persisted
// document and state, keeping the audit trail in sync.
type TrackerService struct {
	repo    *storage.FilesystemRepository
	audit   *AuditService
	options []tracking.Option
}

func NewTrackerService(repo *storage.FilesystemRepository, audit *AuditService, opts ...tracking.Option) *TrackerService {
	return &TrackerService{repo: repo, audit: audit, options: opts}
}

// load rebuilds a tracker from the persisted document and state. The saved
// state's mode wins over construction options, so a plan tracked unordered
// stays unordered across invocations.
func (s *TrackerService) load() (*tracking.Tracker, *document.Document, error) {
	doc, err := s.repo.LoadDocument()
	if err != nil {
		return nil, nil, err
	}

	state, err := s.repo.LoadState()
	if err != nil {
		return nil, nil, err
	}

	tracker, err := tracking.Restore(doc, state, s.options...)
	if err != nil {
		return nil, nil, err
	}
	return tracker, doc, nil
}

func (s *TrackerService) save(tracker *tracking.Tracker) error {
	return s.repo.SaveState(tracker.Export())
}

// Transition moves a node to the requested status and persists the result.
func (s *TrackerService) Transition(path string, to tracking.Status, actor, note string) error {
	tracker, _, err := s.load()
	if err != nil {
		return err
	}

	if err := tracker.Transition(path, to, actor, note); err != nil {
		return err
	}
	if err := s.save(tracker); err != nil {
		return err
	}

	return s.audit.Log(events.EventTypeNodeTransitioned, path, actor, map[string]interface{}{
		"to":   string(to),
		"note": note,
	})
}

// Block marks a node blocked with a reason and persists the result.
func (s *TrackerService) Block(path, reason, actor string) error {
	tracker, _, err := s.load()
	if err != nil {
		return err
	}

	if err := tracker.Block(path, reason, actor); err != nil {
		return err
	}
	if err := s.save(tracker); err != nil {
		return err
	}

	return s.audit.Log(events.EventTypeNodeBlocked, path, actor, map[string]interface{}{
		"reason": reason,
	})
}

// Unblock releases a blocked node and persists the result.
func (s *TrackerService) Unblock(path, actor string) error {
	tracker, _, err := s.load()
	if err != nil {
		return err
	}

	if err := tracker.Unblock(path, actor); err != nil {
		return err
	}
	if err := s.save(tracker); err != nil {
		return err
	}

	return s.audit.Log(events.EventTypeNodeUnblocked, path, actor, nil)
}

// Snapshot returns the committed tracker view plus the document it covers.
func (s *TrackerService) Snapshot() (tracking.Snapshot, *document.Document, error) {
	tracker, doc, err := s.load()
	if err != nil {
		return tracking.Snapshot{}, nil, err
	}
	return tracker.Snapshot(), doc, nil
}

// State returns the effective status of a single node.
func (s *TrackerService) State(path string) (tracking.Status, error) {
	tracker, _, err := s.load()
	if err != nil {
		return "", err
	}
	return tracker.State(path)
}

// CompletionRatio returns the overall done ratio in [0,1].
func (s *TrackerService) CompletionRatio() (float64, error) {
	tracker, _, err := s.load()
	if err != nil {
		return 0, err
	}
	return tracker.CompletionRatio(), nil
}
