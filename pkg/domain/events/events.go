// Package events defines the audit events appended to the plan history log.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// BaseEvent is one record of the append-only audit trail. Events are
// hash-chained so the trail can be verified for tampering.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	NodePath  string                 `json:"node_path,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Actor     string                 `json:"actor"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	PrevHash  string                 `json:"prev_hash,omitempty"`
	Hash      string                 `json:"hash,omitempty"`
}

// Event type constants.
const (
	EventTypeDocumentImported  = "document.imported"
	EventTypeDocumentValidated = "document.validated"
	EventTypeNodeTransitioned  = "node.transitioned"
	EventTypeNodeBlocked       = "node.blocked"
	EventTypeNodeUnblocked     = "node.unblocked"
	EventTypeDocumentReparsed  = "document.reparsed"
)

// CalculateHash generates a deterministic SHA256 hash of the event,
// chained to the previous event's hash.
func (e *BaseEvent) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Type))
	h.Write([]byte(e.NodePath))
	h.Write([]byte(e.Actor))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON produces a deterministic JSON representation.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')
	return string(ordered)
}
