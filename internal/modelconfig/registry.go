package modelconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"docqa-ai/internal/llm"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// Config names the active embedding model, generation model and model-service
// endpoint. Exactly one Config is active process-wide at any time.
type Config struct {
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
	BaseURL        string `json:"ollama_base_url"`
}

// Update is a partial configuration change; nil fields keep their current value.
type Update struct {
	EmbeddingModel *string
	LLMModel       *string
	BaseURL        *string
}

// ClientFactory builds a model service client for a configuration.
type ClientFactory func(cfg Config) llm.ModelService

// DocumentCounter reports how many documents are currently indexed. The
// registry uses it to refuse embedding-model changes while vectors exist.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

// Provider gives read access to the active configuration and its client.
// Do runs fn under a read lock, so an ingestion or query that starts against
// one configuration finishes against that same configuration.
type Provider interface {
	Get() Config
	Do(fn func(cfg Config, client llm.ModelService) error) error
}

// Registry owns the mutable model configuration. All reads go through Get/Do;
// Update is the single writer and excludes in-flight ingestions and queries,
// so vectors from different embedding models never mix in one index.
type Registry struct {
	mu         sync.RWMutex
	cfg        Config
	client     llm.ModelService
	store      storage.ModelConfigStore
	docs       DocumentCounter
	vectors    vectorstore.VectorStore
	collection string
	factory    ClientFactory
	logger     *slog.Logger
}

// NewRegistry loads the persisted configuration (falling back to defaults and
// persisting them on first start) and builds the initial client.
func NewRegistry(
	ctx context.Context,
	store storage.ModelConfigStore,
	docs DocumentCounter,
	vectors vectorstore.VectorStore,
	collection string,
	defaults Config,
	factory ClientFactory,
) (*Registry, error) {
	if factory == nil {
		factory = func(cfg Config) llm.ModelService {
			return llm.NewClient(cfg.BaseURL, cfg.EmbeddingModel, cfg.LLMModel)
		}
	}

	cfg := defaults
	rec, err := store.Load(ctx)
	switch {
	case err == nil:
		cfg = Config{
			EmbeddingModel: rec.EmbeddingModel,
			LLMModel:       rec.LLMModel,
			BaseURL:        rec.BaseURL,
		}
	case errors.Is(err, storage.ErrNotFound):
		if err := store.Save(ctx, &storage.ModelConfigRecord{
			EmbeddingModel: cfg.EmbeddingModel,
			LLMModel:       cfg.LLMModel,
			BaseURL:        cfg.BaseURL,
		}); err != nil {
			return nil, fmt.Errorf("failed to persist default model config: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load model config: %w", err)
	}

	return &Registry{
		cfg:        cfg,
		client:     factory(cfg),
		store:      store,
		docs:       docs,
		vectors:    vectors,
		collection: collection,
		factory:    factory,
		logger:     slog.Default(),
	}, nil
}

// Get returns the active configuration.
func (r *Registry) Get() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Do runs fn with the active configuration and client under a read lock.
// Configuration updates wait for fn to finish.
func (r *Registry) Do(fn func(cfg Config, client llm.ModelService) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.cfg, r.client)
}

// Update applies a partial configuration change. If the embedding model would
// change while at least one document exists, the whole update is rejected with
// ErrConflictingState and nothing is modified. On an accepted change the new
// configuration is persisted first, then the client is rebuilt; an accepted
// embedding-model change additionally drops the (necessarily empty) vector
// collection so the next ingestion recreates it at the new dimension.
// It returns the resulting configuration and whether the embedding model changed.
func (r *Registry) Update(ctx context.Context, upd Update) (Config, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := r.cfg
	if upd.EmbeddingModel != nil && strings.TrimSpace(*upd.EmbeddingModel) != "" {
		merged.EmbeddingModel = strings.TrimSpace(*upd.EmbeddingModel)
	}
	if upd.LLMModel != nil && strings.TrimSpace(*upd.LLMModel) != "" {
		merged.LLMModel = strings.TrimSpace(*upd.LLMModel)
	}
	if upd.BaseURL != nil && strings.TrimSpace(*upd.BaseURL) != "" {
		merged.BaseURL = strings.TrimRight(strings.TrimSpace(*upd.BaseURL), "/")
	}

	embeddingChanged := merged.EmbeddingModel != r.cfg.EmbeddingModel

	if embeddingChanged {
		count, err := r.docs.Count(ctx)
		if err != nil {
			return r.cfg, false, fmt.Errorf("%w: failed to count documents: %v", service.ErrStorageFailure, err)
		}
		if count > 0 {
			return r.cfg, false, fmt.Errorf(
				"%w: cannot change embedding model while %d documents are indexed, delete them first",
				service.ErrConflictingState, count)
		}
	}

	if merged == r.cfg {
		return r.cfg, false, nil
	}

	if err := r.store.Save(ctx, &storage.ModelConfigRecord{
		EmbeddingModel: merged.EmbeddingModel,
		LLMModel:       merged.LLMModel,
		BaseURL:        merged.BaseURL,
	}); err != nil {
		return r.cfg, false, fmt.Errorf("%w: failed to persist model config: %v", service.ErrStorageFailure, err)
	}

	if embeddingChanged {
		// The index is empty here; dropping it lets the next ingestion
		// recreate the collection at the new model's dimension.
		if err := r.vectors.DropCollection(ctx, r.collection); err != nil {
			r.logger.WarnContext(ctx, "failed to drop collection after embedding model change",
				"collection", r.collection, "error", err)
		}
	}

	r.cfg = merged
	r.client = r.factory(merged)
	r.logger.InfoContext(ctx, "model configuration updated",
		"embedding_model", merged.EmbeddingModel,
		"llm_model", merged.LLMModel,
		"base_url", merged.BaseURL,
		"embedding_changed", embeddingChanged,
	)

	return merged, embeddingChanged, nil
}
