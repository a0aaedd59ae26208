package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_model_config_store.go -package=mocks docqa-ai/internal/storage ModelConfigStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ModelConfigStore persists the singleton model configuration record.
type ModelConfigStore interface {
	// Load returns the stored configuration, or ErrNotFound when no
	// configuration has been saved yet.
	Load(ctx context.Context) (*ModelConfigRecord, error)
	// Save writes the configuration, replacing any previous one.
	Save(ctx context.Context, rec *ModelConfigRecord) error
}

// ModelConfigRepo provides access to the model configuration row.
// It implements the ModelConfigStore interface.
type ModelConfigRepo struct {
	db *sql.DB
}

// NewModelConfigRepo creates a new ModelConfigRepo.
func NewModelConfigRepo(db *sql.DB) *ModelConfigRepo {
	return &ModelConfigRepo{db: db}
}

// Load returns the stored configuration.
func (r *ModelConfigRepo) Load(ctx context.Context) (*ModelConfigRecord, error) {
	var rec ModelConfigRecord
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT embedding_model, llm_model, base_url, updated_at FROM model_config WHERE id = 1`,
	).Scan(&rec.EmbeddingModel, &rec.LLMModel, &rec.BaseURL, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query model config: %w", err)
	}

	if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return &rec, nil
}

// Save writes the configuration, replacing any previous one.
func (r *ModelConfigRepo) Save(ctx context.Context, rec *ModelConfigRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO model_config (id, embedding_model, llm_model, base_url, updated_at)
		 VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 embedding_model = excluded.embedding_model,
		 llm_model = excluded.llm_model,
		 base_url = excluded.base_url,
		 updated_at = CURRENT_TIMESTAMP`,
		rec.EmbeddingModel, rec.LLMModel, rec.BaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save model config: %w", err)
	}
	return nil
}
