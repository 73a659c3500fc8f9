package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
)

func testDoc() *document.Document {
	return &document.Document{
		Title:   "Stored Plan",
		Tagline: "A plan on disk",
		Steps: []document.Step{
			{
				Index: 1, Declared: 1, Title: "First",
				SubSteps: []document.SubStep{
					{Label: "1.1", Ordinal: 1, Title: "Part", Actions: []document.Action{
						{Text: "do it", References: []document.PathReference{
							{Raw: "src/main.go", Kind: document.RefFile},
						}},
					}},
				},
			},
		},
		TestingItems: []document.TestingItem{{Text: "check it"}},
	}
}

func TestResolvePath(t *testing.T) {
	repo := NewFilesystemRepository("/workspace")

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"valid file", "document.yaml", false},
		{"empty filename", "", true},
		{"traversal", "../../../etc/passwd", true},
		{"nested path", "sub/dir/file.yaml", true},
		{"dot dot inside", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ResolvePath(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := filepath.Join("/workspace", StepwiseDir, tt.filename)
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)

	if repo.IsInitialized() {
		t.Error("fresh workspace reported initialized")
	}
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !repo.IsInitialized() {
		t.Error("workspace not initialized after Initialize")
	}

	info, err := os.Stat(filepath.Join(root, StepwiseDir))
	if err != nil || !info.IsDir() {
		t.Fatalf("stat: %v", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	doc := testDoc()
	if err := repo.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	loaded, err := repo.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if loaded.Title != doc.Title {
		t.Errorf("title = %q", loaded.Title)
	}
	if len(loaded.Steps) != 1 || len(loaded.Steps[0].SubSteps) != 1 {
		t.Fatalf("tree shape lost: %+v", loaded.Steps)
	}
	refs := loaded.Steps[0].SubSteps[0].Actions[0].References
	if len(refs) != 1 || refs[0].Kind != document.RefFile {
		t.Errorf("references lost: %v", refs)
	}
}

func TestLoadDocument_Missing(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, err := repo.LoadDocument()
	if !errors.Is(err, ErrNoDocument) {
		t.Errorf("err = %v, want ErrNoDocument", err)
	}
}

func TestSourceRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	raw := "# A Plan\n\n## Execution Steps\n\n### Step 1: Go\n\n- do\n"
	if err := repo.SaveSource(raw); err != nil {
		t.Fatalf("SaveSource: %v", err)
	}

	got, err := repo.LoadSource()
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if got != raw {
		t.Errorf("source altered on round trip")
	}
}

func TestStateRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	state := &tracking.ExecutionState{
		Mode: "ordered",
		Nodes: map[string]tracking.NodeState{
			"1.1.1": {Status: tracking.StatusDone, Actor: "alice"},
			"1.1.2": {Status: tracking.StatusBlocked, BlockedFrom: tracking.StatusPending, Reason: "hold"},
		},
	}
	if err := repo.SaveState(state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, err := repo.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded.Mode != "ordered" {
		t.Errorf("mode = %q", loaded.Mode)
	}
	blocked := loaded.Nodes["1.1.2"]
	if blocked.Status != tracking.StatusBlocked || blocked.BlockedFrom != tracking.StatusPending || blocked.Reason != "hold" {
		t.Errorf("blocked node state lost: %+v", blocked)
	}
}

func TestLoadState_MissingYieldsEmptyState(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	state, err := repo.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state == nil || state.Nodes == nil || len(state.Nodes) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}
