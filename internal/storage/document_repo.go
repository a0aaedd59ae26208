package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Insert stores a new document record.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// List returns documents newest-first, optionally filtered by folder.
	// An empty folder means no filter.
	List(ctx context.Context, folder string) ([]*DocumentRecord, error)
	// UpdateFolder changes a document's folder label. Returns ErrNotFound if
	// the document does not exist.
	UpdateFolder(ctx context.Context, id, folder string) error
	// Delete removes a document record. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// Count returns the number of document records.
	Count(ctx context.Context) (int, error)
	// ListFolders returns the distinct non-empty folder labels, sorted.
	ListFolders(ctx context.Context) ([]string, error)
}

// DocumentRepo provides methods for document metadata operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert stores a new document record.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, folder, chunk_count, storage_path, preview)
		 VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Folder, doc.ChunkCount, doc.StoragePath, doc.Preview,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, COALESCE(folder, ''), chunk_count, storage_path, preview, created_at
		 FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// List returns documents newest-first, optionally filtered by folder.
func (r *DocumentRepo) List(ctx context.Context, folder string) ([]*DocumentRecord, error) {
	query := `SELECT id, filename, COALESCE(folder, ''), chunk_count, storage_path, preview, created_at
		 FROM documents`
	args := []any{}
	if folder != "" {
		query += ` WHERE folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// UpdateFolder changes a document's folder label.
func (r *DocumentRepo) UpdateFolder(ctx context.Context, id, folder string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET folder = NULLIF(?, '') WHERE id = ?`, folder, id)
	if err != nil {
		return fmt.Errorf("failed to update document folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document record.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of document records.
func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// ListFolders returns the distinct non-empty folder labels, sorted.
func (r *DocumentRepo) ListFolders(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT folder FROM documents WHERE folder IS NOT NULL AND folder != '' ORDER BY folder`)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var folders []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}
	return folders, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var createdAt string
	if err := s.Scan(&doc.ID, &doc.Filename, &doc.Folder, &doc.ChunkCount,
		&doc.StoragePath, &doc.Preview, &createdAt); err != nil {
		return nil, err
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	doc.CreatedAt = ts
	return &doc, nil
}
