package application

import (
	"github.com/felixgeelhaar/stepwise/pkg/domain/events"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

// AuditService appends audit events to the workspace event log.
type AuditService struct {
	store *storage.FileEventStore
}

func NewAuditService(store *storage.FileEventStore) *AuditService {
	return &AuditService{store: store}
}

// Log appends one event. A nil service or store is a no-op so callers can
// audit opportunistically.
func (s *AuditService) Log(eventType, nodePath, actor string, metadata map[string]interface{}) error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Append(&events.BaseEvent{
		Type:     eventType,
		NodePath: nodePath,
		Actor:    actor,
		Metadata: metadata,
	})
}

// Trail returns the full audit trail in append order.
func (s *AuditService) Trail() ([]*events.BaseEvent, error) {
	return s.store.LoadAll()
}

// TrailForNode returns the audit trail filtered to one node path.
func (s *AuditService) TrailForNode(nodePath string) ([]*events.BaseEvent, error) {
	return s.store.LoadByNode(nodePath)
}

// Verify re-checks the event hash chain and returns any violations.
func (s *AuditService) Verify() ([]string, error) {
	return s.store.VerifyIntegrity()
}
