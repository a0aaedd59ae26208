package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"docqa-ai/internal/chunker"
	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// previewLen is how many runes of extracted text are kept as the document preview.
const previewLen = 500

// Pipeline orchestrates ingestion: chunk the extracted text, embed each chunk
// with the active embedding model, insert the vectors, then write the document
// record. From the caller's perspective the two stores move together: either
// both end up updated or neither does.
type Pipeline struct {
	registry   modelconfig.Provider
	docs       storage.DocumentStore
	vectors    vectorstore.VectorStore
	collection string
	splitter   *chunker.Splitter
	logger     *slog.Logger

	// mu serializes the paired vector-index/document-store critical sections,
	// so an ingestion cannot interleave with a deletion of the same document.
	mu sync.Mutex
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	registry modelconfig.Provider,
	docs storage.DocumentStore,
	vectors vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		registry:   registry,
		docs:       docs,
		vectors:    vectors,
		collection: collection,
		splitter:   chunker.NewSplitter(chunker.DefaultChunkSize, chunker.DefaultOverlap),
		logger:     slog.Default(),
	}
}

// Ingest indexes one document's extracted text and returns its record.
// The whole run executes under the registry's read guard, so the embedding
// model cannot change underneath it.
func (p *Pipeline) Ingest(ctx context.Context, text, filename, folder, storagePath string) (*storage.DocumentRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var doc *storage.DocumentRecord
	err := p.registry.Do(func(cfg modelconfig.Config, client llm.ModelService) error {
		// Fail fast before any store is touched
		if err := client.Heartbeat(ctx); err != nil {
			return service.Unavailable(cfg.BaseURL, err)
		}

		chunks := p.splitter.Split(text)
		if len(chunks) == 0 {
			return fmt.Errorf("%w: %s", service.ErrEmptyDocument, filename)
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		embeddings, err := client.EmbedTexts(ctx, texts)
		if err != nil {
			return service.Unavailable(cfg.BaseURL, err)
		}
		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
		}

		docID := uuid.New().String()
		points := make([]vectorstore.Point, len(chunks))
		for i, c := range chunks {
			points[i] = vectorstore.Point{
				ID:  uuid.New().String(),
				Vec: embeddings[i],
				Meta: map[string]any{
					"doc_id":      docID,
					"filename":    filename,
					"folder":      folder,
					"chunk_index": c.Index,
					"text":        c.Text,
				},
			}
		}

		record := &storage.DocumentRecord{
			ID:          docID,
			Filename:    filename,
			Folder:      folder,
			ChunkCount:  len(chunks),
			StoragePath: storagePath,
			Preview:     preview(text),
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		if err := p.vectors.EnsureCollection(ctx, p.collection, len(embeddings[0])); err != nil {
			return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
		}
		if err := p.vectors.Upsert(ctx, p.collection, points); err != nil {
			return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
		}

		if err := p.docs.Insert(ctx, record); err != nil {
			// Compensate: no vectors may survive without a document record
			if delErr := p.vectors.DeleteByDocument(ctx, p.collection, docID); delErr != nil {
				logger.ErrorContext(ctx, "failed to roll back vectors after document insert failure",
					"doc_id", docID, "error", delErr)
			}
			return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
		}

		doc = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "ingested document",
		"doc_id", doc.ID, "filename", doc.Filename, "chunks", doc.ChunkCount, "folder", doc.Folder)
	return doc, nil
}

// Remove deletes a document: its vectors, its record and its stored original
// file. Returns storage.ErrNotFound if the document does not exist.
func (p *Pipeline) Remove(ctx context.Context, docID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.docs.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
	}

	if err := p.vectors.DeleteByDocument(ctx, p.collection, docID); err != nil {
		return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
	}

	if err := p.docs.Delete(ctx, docID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", service.ErrStorageFailure, err)
	}

	if doc.StoragePath != "" {
		if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
			logger.WarnContext(ctx, "failed to remove stored file", "path", doc.StoragePath, "error", err)
		}
	}

	logger.InfoContext(ctx, "removed document", "doc_id", docID, "filename", doc.Filename)
	return nil
}

// preview returns the first previewLen runes of text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen])
}
