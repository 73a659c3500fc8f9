package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/stepwise/pkg/domain/events"
	"github.com/google/uuid"
)

// FileEventStore is the append-only audit trail, one JSON object per line.
// Every event carries the hash of its predecessor so edits to the file are
// detectable after the fact.
type FileEventStore struct {
	mu       sync.RWMutex
	dir      string
	file     string
	tailHash string
}

// NewFileEventStore opens the trail under dir. The directory is created on
// first append so an unused store leaves no trace on disk.
func NewFileEventStore(dir string) (*FileEventStore, error) {
	s := &FileEventStore{
		dir:  dir,
		file: filepath.Join(dir, EventsFile),
	}

	tail, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if n := len(tail); n > 0 {
		s.tailHash = tail[n-1].Hash
	}
	return s, nil
}

// Append stamps the event with an ID, timestamp and chain hash, then writes
// it as one line at the end of the trail.
func (s *FileEventStore) Append(event *events.BaseEvent) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.PrevHash = s.tailHash
	event.Hash = event.CalculateHash()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create events directory: %w", err)
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	s.tailHash = event.Hash
	return nil
}

// LoadAll returns every event in append order.
func (s *FileEventStore) LoadAll() ([]*events.BaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAll()
}

// LoadByNode returns the events recorded against one node path.
func (s *FileEventStore) LoadByNode(nodePath string) ([]*events.BaseEvent, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	var out []*events.BaseEvent
	for _, e := range all {
		if e.NodePath == nodePath {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetLastEvent returns the newest event, or nil for an empty trail.
func (s *FileEventStore) GetLastEvent() (*events.BaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.readAll()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[len(all)-1], nil
}

// Count returns how many events the trail holds.
func (s *FileEventStore) Count() (int, error) {
	all, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// VerifyIntegrity walks the chain and reports every link that no longer
// matches: a rewritten event changes its own hash, a dropped or reordered
// event breaks the predecessor link of the one after it.
func (s *FileEventStore) VerifyIntegrity() ([]string, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	var violations []string
	prev := ""
	for i, e := range all {
		if e.PrevHash != prev {
			violations = append(violations, fmt.Sprintf("event %d (%s): broken chain link", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("event %d (%s): content does not match its hash", i, e.ID))
		}
		prev = e.Hash
	}
	return violations, nil
}

// readAll decodes the trail line by line. A missing file is an empty trail.
func (s *FileEventStore) readAll() ([]*events.BaseEvent, error) {
	f, err := os.Open(s.file)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var out []*events.BaseEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e events.BaseEvent
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}
	return out, nil
}
