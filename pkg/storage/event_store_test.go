package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/stepwise/pkg/domain/events"
)

func newTestStore(t *testing.T) (*FileEventStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileEventStore(dir)
	if err != nil {
		t.Fatalf("NewFileEventStore: %v", err)
	}
	return store, dir
}

func appendEvent(t *testing.T, store *FileEventStore, eventType, nodePath string) {
	t.Helper()
	if err := store.Append(&events.BaseEvent{
		Type:     eventType,
		NodePath: nodePath,
		Actor:    "alice",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventStore_AppendAndLoad(t *testing.T) {
	store, _ := newTestStore(t)

	appendEvent(t, store, events.EventTypeDocumentImported, "")
	appendEvent(t, store, events.EventTypeNodeTransitioned, "1.1.1")
	appendEvent(t, store, events.EventTypeNodeBlocked, "1.1.2")

	all, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}

	for i, e := range all {
		if e.ID == "" {
			t.Errorf("event %d has no ID", i)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
		if e.Hash == "" {
			t.Errorf("event %d has no hash", i)
		}
	}

	// Events chain: each PrevHash matches its predecessor.
	if all[0].PrevHash != "" {
		t.Errorf("first event PrevHash = %q, want empty", all[0].PrevHash)
	}
	for i := 1; i < len(all); i++ {
		if all[i].PrevHash != all[i-1].Hash {
			t.Errorf("event %d PrevHash does not chain", i)
		}
	}

	count, err := store.Count()
	if err != nil || count != 3 {
		t.Errorf("Count = %d, %v", count, err)
	}
}

func TestEventStore_LoadByNode(t *testing.T) {
	store, _ := newTestStore(t)

	appendEvent(t, store, events.EventTypeNodeTransitioned, "1.1.1")
	appendEvent(t, store, events.EventTypeNodeTransitioned, "2.0.1")
	appendEvent(t, store, events.EventTypeNodeBlocked, "1.1.1")

	got, err := store.LoadByNode("1.1.1")
	if err != nil {
		t.Fatalf("LoadByNode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events for node = %d, want 2", len(got))
	}
	if got[1].Type != events.EventTypeNodeBlocked {
		t.Errorf("second event type = %q", got[1].Type)
	}
}

func TestEventStore_VerifyIntegrity(t *testing.T) {
	store, dir := newTestStore(t)

	appendEvent(t, store, events.EventTypeDocumentImported, "")
	appendEvent(t, store, events.EventTypeNodeTransitioned, "1.1.1")

	violations, err := store.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}

	// Tamper with the log and verify again.
	path := filepath.Join(dir, EventsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tampered := strings.Replace(string(data), "alice", "mallory", 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	violations, err = store.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity after tamper: %v", err)
	}
	if len(violations) == 0 {
		t.Error("tampering went undetected")
	}
}

func TestEventStore_ResumesChainAcrossRestarts(t *testing.T) {
	store, dir := newTestStore(t)
	appendEvent(t, store, events.EventTypeDocumentImported, "")

	reopened, err := NewFileEventStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	appendEvent(t, reopened, events.EventTypeNodeTransitioned, "1.1.1")

	all, err := reopened.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("events = %d, want 2", len(all))
	}
	if all[1].PrevHash != all[0].Hash {
		t.Error("chain broken across restarts")
	}

	violations, err := reopened.VerifyIntegrity()
	if err != nil || len(violations) != 0 {
		t.Errorf("integrity after restart: %v, %v", violations, err)
	}
}

func TestEventStore_EmptyStore(t *testing.T) {
	store, _ := newTestStore(t)

	all, err := store.LoadAll()
	if err != nil || len(all) != 0 {
		t.Errorf("LoadAll on empty store = %v, %v", all, err)
	}
	last, err := store.GetLastEvent()
	if err != nil || last != nil {
		t.Errorf("GetLastEvent on empty store = %v, %v", last, err)
	}
}
