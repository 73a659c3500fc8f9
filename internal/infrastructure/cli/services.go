package cli

import (
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/internal/application"
	"github.com/felixgeelhaar/stepwise/internal/infrastructure/config"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

// Services bundles the wired application services for a workspace.
type Services struct {
	Repo      *storage.FilesystemRepository
	Config    *config.Config
	Audit     *application.AuditService
	Documents *application.DocumentService
	Tracker   *application.TrackerService
}

// loadServicesForCurrentDir wires the service graph rooted at the current
// working directory. The workspace must have been initialized.
func loadServicesForCurrentDir() (*Services, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadServices(cwd)
}

func loadServices(root string) (*Services, error) {
	repo := storage.NewFilesystemRepository(root)
	if !repo.IsInitialized() {
		return nil, NewCLIError("workspace not initialized", "Run 'stepwise init' first", nil)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileEventStore(filepath.Join(root, storage.StepwiseDir))
	if err != nil {
		return nil, err
	}

	audit := application.NewAuditService(store)

	return &Services{
		Repo:      repo,
		Config:    cfg,
		Audit:     audit,
		Documents: application.NewDocumentService(repo, audit),
		Tracker:   application.NewTrackerService(repo, audit, cfg.TrackerOptions()...),
	}, nil
}
