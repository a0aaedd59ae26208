package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_documents.go -package=mocks docqa-ai/internal/service Documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/extract"
	"docqa-ai/internal/storage"
)

// Ingestor is the slice of the ingestion pipeline the document service needs.
type Ingestor interface {
	Ingest(ctx context.Context, text, filename, folder, storagePath string) (*storage.DocumentRecord, error)
	Remove(ctx context.Context, docID string) error
}

// Documents is the document-management surface exposed to the HTTP layer.
type Documents interface {
	// Upload persists the original file, extracts its text and ingests it.
	// On any failure the persisted file is removed again.
	Upload(ctx context.Context, filename, folder string, file io.Reader) (*storage.DocumentRecord, error)
	// List returns document records, optionally filtered by folder.
	List(ctx context.Context, folder string) ([]*storage.DocumentRecord, error)
	// Delete removes a document, its vectors and its stored file.
	Delete(ctx context.Context, id string) error
	// UpdateFolder changes a document's folder label.
	UpdateFolder(ctx context.Context, id, folder string) error
	// Folders returns the distinct folder labels in use, sorted.
	Folders(ctx context.Context) ([]string, error)
}

// DocumentService implements Documents on top of the ingestion pipeline and
// the document store.
type DocumentService struct {
	uploadDir string
	pipeline  Ingestor
	docs      storage.DocumentStore
	logger    *slog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(uploadDir string, pipeline Ingestor, docs storage.DocumentStore) *DocumentService {
	return &DocumentService{
		uploadDir: uploadDir,
		pipeline:  pipeline,
		docs:      docs,
		logger:    slog.Default(),
	}
}

// Upload saves the file to the upload directory, extracts its text and runs
// the ingestion pipeline. The stored file survives only if ingestion succeeds.
func (s *DocumentService) Upload(ctx context.Context, filename, folder string, file io.Reader) (*storage.DocumentRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	filename = sanitizeFilename(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidInput)
	}
	if !extract.Supported(filename) {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedFormat, filepath.Ext(filename), strings.Join(extract.Extensions(), ", "))
	}

	// Prefix with a fresh UUID so concurrent uploads of the same name never collide
	dst := filepath.Join(s.uploadDir, uuid.New().String()+"_"+filename)
	if err := saveFile(dst, file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	text, err := extract.Text(dst)
	if err != nil {
		s.discard(ctx, dst)
		if errors.Is(err, extract.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, WrapError(err, "failed to extract text")
	}

	doc, err := s.pipeline.Ingest(ctx, text, filename, strings.TrimSpace(folder), dst)
	if err != nil {
		// Pipeline postcondition: neither store updated, so the original
		// file must not linger either
		s.discard(ctx, dst)
		return nil, err
	}

	logger.InfoContext(ctx, "document uploaded", "doc_id", doc.ID, "filename", filename, "chunks", doc.ChunkCount)
	return doc, nil
}

// List returns document records, optionally filtered by folder.
func (s *DocumentService) List(ctx context.Context, folder string) ([]*storage.DocumentRecord, error) {
	docs, err := s.docs.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return docs, nil
}

// Delete removes a document, its vectors and its stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	err := s.pipeline.Remove(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	return err
}

// UpdateFolder changes a document's folder label.
func (s *DocumentService) UpdateFolder(ctx context.Context, id, folder string) error {
	err := s.docs.UpdateFolder(ctx, id, strings.TrimSpace(folder))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// Folders returns the distinct folder labels in use, sorted.
func (s *DocumentService) Folders(ctx context.Context) ([]string, error) {
	folders, err := s.docs.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return folders, nil
}

// discard removes a persisted upload after a failed ingestion attempt.
func (s *DocumentService) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove uploaded file", "path", path, "error", err)
	}
}

// sanitizeFilename strips any path components from a client-supplied filename.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSpace(name)
}

func saveFile(dst string, src io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return nil
}
