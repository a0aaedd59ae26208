package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa-ai/internal/llm"
	llmmocks "docqa-ai/internal/llm/mocks"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/storage"
	storagemocks "docqa-ai/internal/storage/mocks"
	vsmocks "docqa-ai/internal/vectorstore/mocks"
)

type registryDeps struct {
	store   *storagemocks.MockModelConfigStore
	docs    *storagemocks.MockDocumentStore
	vectors *vsmocks.MockVectorStore
	client  *llmmocks.MockModelService
}

// newTestRegistry builds a registry seeded with defaults and a mock client.
func newTestRegistry(t *testing.T, ctrl *gomock.Controller) (*modelconfig.Registry, registryDeps) {
	t.Helper()

	deps := registryDeps{
		store:   storagemocks.NewMockModelConfigStore(ctrl),
		docs:    storagemocks.NewMockDocumentStore(ctrl),
		vectors: vsmocks.NewMockVectorStore(ctrl),
		client:  llmmocks.NewMockModelService(ctrl),
	}
	deps.store.EXPECT().Load(gomock.Any()).Return(nil, storage.ErrNotFound)
	deps.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	defaults := modelconfig.Config{
		EmbeddingModel: "nomic-embed-text",
		LLMModel:       "llama3.2",
		BaseURL:        "http://localhost:11434",
	}
	reg, err := modelconfig.NewRegistry(context.Background(), deps.store, deps.docs, deps.vectors,
		"documents", defaults, func(modelconfig.Config) llm.ModelService { return deps.client })
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg, deps
}

func TestModelsHandler_ListModels(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, deps := newTestRegistry(t, ctrl)

	deps.client.EXPECT().ListModels(gomock.Any()).Return([]string{"llama3.2", "nomic-embed-text"}, nil)

	handler := NewModelsHandler(reg)
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	handler.ListModels(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Models    []string `json:"models"`
		Connected bool     `json:"ollama_connected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Connected {
		t.Error("ollama_connected = false, want true")
	}
	if len(resp.Models) != 2 {
		t.Errorf("models = %v", resp.Models)
	}
}

func TestModelsHandler_ListModels_ServiceDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, deps := newTestRegistry(t, ctrl)

	deps.client.EXPECT().ListModels(gomock.Any()).Return(nil, errors.New("connection refused"))

	handler := NewModelsHandler(reg)
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	handler.ListModels(rec, req)

	// An unreachable model service is reported in the payload, not as an error.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Models    []string `json:"models"`
		Connected bool     `json:"ollama_connected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Connected {
		t.Error("ollama_connected = true, want false")
	}
	if len(resp.Models) != 0 {
		t.Errorf("models = %v, want empty", resp.Models)
	}
}

func TestModelsHandler_GetConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, _ := newTestRegistry(t, ctrl)

	handler := NewModelsHandler(reg)
	req := httptest.NewRequest(http.MethodGet, "/api/models/config", nil)
	rec := httptest.NewRecorder()
	handler.GetConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg modelconfig.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if cfg.EmbeddingModel != "nomic-embed-text" || cfg.LLMModel != "llama3.2" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestModelsHandler_UpdateConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, deps := newTestRegistry(t, ctrl)

	deps.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	handler := NewModelsHandler(reg)
	body := []byte(`{"llm_model":"mistral"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/models/config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpdateConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		modelconfig.Config
		EmbeddingChanged bool `json:"embedding_changed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.LLMModel != "mistral" {
		t.Errorf("llm_model = %q, want mistral", resp.LLMModel)
	}
	if resp.EmbeddingChanged {
		t.Error("embedding_changed = true, want false")
	}
}

func TestModelsHandler_UpdateConfig_EmbeddingChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, deps := newTestRegistry(t, ctrl)

	deps.docs.EXPECT().Count(gomock.Any()).Return(0, nil)
	deps.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	deps.vectors.EXPECT().DropCollection(gomock.Any(), "documents").Return(nil)

	handler := NewModelsHandler(reg)
	body := []byte(`{"embedding_model":"mxbai-embed-large"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/models/config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpdateConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		EmbeddingChanged bool `json:"embedding_changed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.EmbeddingChanged {
		t.Error("embedding_changed = false, want true")
	}
}

func TestModelsHandler_UpdateConfig_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, deps := newTestRegistry(t, ctrl)

	deps.docs.EXPECT().Count(gomock.Any()).Return(5, nil)

	handler := NewModelsHandler(reg)
	body := []byte(`{"embedding_model":"mxbai-embed-large"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/models/config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpdateConfig(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("conflict response should carry an error message")
	}
	if resp.Warning == "" {
		t.Error("conflict response should carry a warning")
	}
}

func TestModelsHandler_UpdateConfig_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg, _ := newTestRegistry(t, ctrl)

	handler := NewModelsHandler(reg)
	req := httptest.NewRequest(http.MethodPut, "/api/models/config", bytes.NewReader([]byte(`{broken`)))
	rec := httptest.NewRecorder()
	handler.UpdateConfig(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
