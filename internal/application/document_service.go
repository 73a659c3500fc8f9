package application

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/pkg/domain/document"
	"github.com/felixgeelhaar/stepwise/pkg/domain/events"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

// DocumentService imports, parses and validates plan documents.
type DocumentService struct {
	repo  *storage.FilesystemRepository
	audit *AuditService
}

func NewDocumentService(repo *storage.FilesystemRepository, audit *AuditService) *DocumentService {
	return &DocumentService{repo: repo, audit: audit}
}

// Import reads a plan file, parses it into a document and persists both the
// parsed tree and the raw source. Parse diagnostics are returned alongside
// the document; only I/O failures are errors.
func (s *DocumentService) Import(path string) (*document.Document, []document.Diagnostic, error) {
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- user-supplied plan file, read-only
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	doc, diags := document.Parse(string(data))

	if err := s.repo.SaveDocument(doc); err != nil {
		return nil, diags, err
	}
	if err := s.repo.SaveSource(string(data)); err != nil {
		return nil, diags, err
	}

	if err := s.audit.Log(events.EventTypeDocumentImported, "", "", map[string]interface{}{
		"source":      cleanPath,
		"title":       doc.Title,
		"steps":       len(doc.Steps),
		"actions":     doc.TotalActions(),
		"diagnostics": len(diags),
	}); err != nil {
		return nil, diags, err
	}

	return doc, diags, nil
}

// Reparse re-runs the parser over the stored raw source, refreshing the
// persisted tree. Used by watch mode after the source file changes.
func (s *DocumentService) Reparse(raw string) (*document.Document, []document.Diagnostic, error) {
	doc, diags := document.Parse(raw)

	if err := s.repo.SaveDocument(doc); err != nil {
		return nil, diags, err
	}
	if err := s.repo.SaveSource(raw); err != nil {
		return nil, diags, err
	}

	if err := s.audit.Log(events.EventTypeDocumentReparsed, "", "", map[string]interface{}{
		"title":       doc.Title,
		"steps":       len(doc.Steps),
		"diagnostics": len(diags),
	}); err != nil {
		return nil, diags, err
	}

	return doc, diags, nil
}

// Get loads the persisted document.
func (s *DocumentService) Get() (*document.Document, error) {
	return s.repo.LoadDocument()
}

// Validate runs the schema validator over the persisted document.
func (s *DocumentService) Validate(mode document.ValidationMode) (document.Result, error) {
	doc, err := s.repo.LoadDocument()
	if err != nil {
		return document.Result{}, err
	}

	result := document.Validate(doc, mode)

	if err := s.audit.Log(events.EventTypeDocumentValidated, "", "", map[string]interface{}{
		"valid":       result.Valid,
		"diagnostics": len(result.Diagnostics),
	}); err != nil {
		return result, err
	}

	return result, nil
}
