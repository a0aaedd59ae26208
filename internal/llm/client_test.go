package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:11434", "nomic-embed-text", "llama3.2")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:11434" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:11434", client.BaseURL)
	}
	if client.EmbedModel != "nomic-embed-text" {
		t.Errorf("NewClient() EmbedModel = %v, want nomic-embed-text", client.EmbedModel)
	}
	if client.GenModel != "llama3.2" {
		t.Errorf("NewClient() GenModel = %v, want llama3.2", client.GenModel)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
}

func TestClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name       string
		texts      []string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantVecs   int
		wantErr    bool
	}{
		{
			name:  "single text",
			texts: []string{"hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/api/embeddings" {
					t.Errorf("expected /api/embeddings, got %s", r.URL.Path)
				}
				var req embeddingsRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.Model != "embed-model" {
					t.Errorf("request model = %q, want embed-model", req.Model)
				}
				json.NewEncoder(w).Encode(embeddingsResponse{Embedding: []float64{0.1, 0.2, 0.3}})
			},
			wantVecs: 1,
		},
		{
			name:  "multiple texts embedded one by one",
			texts: []string{"a", "b", "c"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(embeddingsResponse{Embedding: []float64{1, 2}})
			},
			wantVecs: 3,
		},
		{
			name:    "empty input",
			texts:   nil,
			wantErr: true,
		},
		{
			name:  "empty embedding rejected",
			texts: []string{"hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(embeddingsResponse{})
			},
			wantErr: true,
		},
		{
			name:  "server error",
			texts: []string{"hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := tt.serverResp
			if handler == nil {
				handler = func(w http.ResponseWriter, r *http.Request) {
					t.Error("unexpected request to server")
				}
			}
			server := httptest.NewServer(http.HandlerFunc(handler))
			defer server.Close()

			client := NewClient(server.URL, "embed-model", "gen-model")
			vecs, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Error("EmbedTexts() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedTexts() unexpected error: %v", err)
			}
			if len(vecs) != tt.wantVecs {
				t.Errorf("EmbedTexts() = %d vectors, want %d", len(vecs), tt.wantVecs)
			}
		})
	}
}

func TestClient_EmbedTexts_DimensionMismatch(t *testing.T) {
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		vec := []float64{1, 2, 3}
		if call > 1 {
			vec = []float64{1, 2}
		}
		json.NewEncoder(w).Encode(embeddingsResponse{Embedding: vec})
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	if _, err := client.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("EmbedTexts() expected error for mismatched dimensions, got nil")
	}
}

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected /api/generate, got %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "gen-model" {
			t.Errorf("request model = %q, want gen-model", req.Model)
		}
		if req.Stream {
			t.Error("request stream = true, want false")
		}
		if req.Prompt != "What is the capital of France?" {
			t.Errorf("request prompt = %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "Paris."})
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	got, err := client.Generate(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if got != "Paris." {
		t.Errorf("Generate() = %q, want Paris.", got)
	}
}

func TestClient_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	if _, err := client.Generate(context.Background(), "hi"); err == nil {
		t.Error("Generate() expected error, got nil")
	}
}

func TestClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected /api/tags, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2"},{"name":"nomic-embed-text"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("ListModels() = %d models, want 2", len(models))
	}
	if models[0] != "llama3.2" || models[1] != "nomic-embed-text" {
		t.Errorf("ListModels() = %v", models)
	}
}

func TestClient_Heartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	if err := client.Heartbeat(context.Background()); err != nil {
		t.Errorf("Heartbeat() unexpected error: %v", err)
	}
}

func TestClient_Heartbeat_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	if err := client.Heartbeat(context.Background()); err == nil {
		t.Error("Heartbeat() expected error for closed server, got nil")
	}
}

func TestClient_Heartbeat_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "embed-model", "gen-model")
	if err := client.Heartbeat(context.Background()); err == nil {
		t.Error("Heartbeat() expected error for 503, got nil")
	}
}
