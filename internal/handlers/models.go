package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/service"
)

// ModelsHandler exposes the model list and the model configuration.
type ModelsHandler struct {
	registry *modelconfig.Registry
}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler(registry *modelconfig.Registry) *ModelsHandler {
	return &ModelsHandler{registry: registry}
}

// ListModels handles GET /api/models: the models available on the Ollama
// server plus a connectivity flag. An unreachable server is reported in the
// flag, not as an error status.
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	names := []string{}
	connected := false
	_ = h.registry.Do(func(cfg modelconfig.Config, client llm.ModelService) error {
		models, err := client.ListModels(ctx)
		if err != nil {
			logger.WarnContext(ctx, "model service not reachable", "base_url", cfg.BaseURL, "error", err)
			return nil
		}
		names = models
		connected = true
		return nil
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"models":           names,
		"ollama_connected": connected,
	})
}

// GetConfig handles GET /api/models/config.
func (h *ModelsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Get())
}

// ConfigRequest is the partial-update payload for PUT /api/models/config.
type ConfigRequest struct {
	EmbeddingModel *string `json:"embedding_model,omitempty"`
	LLMModel       *string `json:"llm_model,omitempty"`
	BaseURL        *string `json:"ollama_base_url,omitempty"`
}

// ConfigResponse echoes the resulting configuration.
type ConfigResponse struct {
	modelconfig.Config
	EmbeddingChanged bool `json:"embedding_changed"`
}

// UpdateConfig handles PUT /api/models/config.
func (h *ModelsHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, embeddingChanged, err := h.registry.Update(ctx, modelconfig.Update{
		EmbeddingModel: req.EmbeddingModel,
		LLMModel:       req.LLMModel,
		BaseURL:        req.BaseURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrConflictingState) {
			logger.WarnContext(ctx, "rejected model config update", "error", err)
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Warning: "Delete all documents before switching the embedding model, existing vectors cannot be compared against a different model's embeddings.",
			})
			return
		}
		handleServiceError(w, ctx, err, "Failed to update model configuration")
		return
	}

	writeJSON(w, http.StatusOK, ConfigResponse{Config: cfg, EmbeddingChanged: embeddingChanged})
}
