// Package storage persists documents and tracker state under the workspace
// dot-directory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"gopkg.in/yaml.v3"
)

const StepwiseDir = ".stepwise"
const DocumentFile = "document.yaml"
const SourceFile = "source.md"
const StateFile = "state.json"
const EventsFile = "events.jsonl"
const ConfigFile = "config.yaml"

// ErrNoDocument is returned when the workspace holds no imported document.
var ErrNoDocument = fmt.Errorf("no document imported")

// ErrNoState is returned when the workspace holds no tracker state yet.
var ErrNoState = fmt.Errorf("no execution state found")

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .stepwise directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, StepwiseDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, StepwiseDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .stepwise directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, StepwiseDir))
	return err == nil
}

// SaveDocument persists the parsed plan document.
func (r *FilesystemRepository) SaveDocument(doc *document.Document) error {
	path, err := r.ResolvePath(DocumentFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadDocument loads the persisted plan document.
func (r *FilesystemRepository) LoadDocument() (*document.Document, error) {
	retryer := retry.New[*document.Document](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*document.Document, error) {
		path, err := r.ResolvePath(DocumentFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrNoDocument
			}
			return nil, fmt.Errorf("failed to read document file: %w", err)
		}

		var doc document.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		return &doc, nil
	})
}

// SaveSource keeps a copy of the raw imported text so watch mode and
// re-validation have a stable origin.
func (r *FilesystemRepository) SaveSource(raw string) error {
	path, err := r.ResolvePath(SourceFile)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(raw), 0600)
}

// LoadSource reads back the raw imported text.
func (r *FilesystemRepository) LoadSource() (string, error) {
	path, err := r.ResolvePath(SourceFile)
	if err != nil {
		return "", err
	}
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoDocument
		}
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	return string(data), nil
}

// SaveState persists tracker execution state.
func (r *FilesystemRepository) SaveState(state *tracking.ExecutionState) error {
	path, err := r.ResolvePath(StateFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadState loads tracker execution state. A missing file yields an empty
// state rather than an error so a freshly imported plan is trackable.
func (r *FilesystemRepository) LoadState() (*tracking.ExecutionState, error) {
	retryer := retry.New[*tracking.ExecutionState](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*tracking.ExecutionState, error) {
		path, err := r.ResolvePath(StateFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return &tracking.ExecutionState{Nodes: map[string]tracking.NodeState{}}, nil
			}
			return nil, fmt.Errorf("failed to read state file: %w", err)
		}

		var state tracking.ExecutionState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state: %w", err)
		}
		if state.Nodes == nil {
			state.Nodes = map[string]tracking.NodeState{}
		}

		return &state, nil
	})
}
