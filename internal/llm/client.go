package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_model_service.go -package=mocks docqa-ai/internal/llm ModelService

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout   = 2 * time.Minute
	heartbeatTimeout = 3 * time.Second
)

// ModelService is the boundary to the model runtime: embedding, generation,
// model enumeration and a lightweight liveness probe.
type ModelService interface {
	// EmbedTexts generates one embedding vector per input text.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Generate produces a single-shot completion for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// ListModels returns the names of the models available on the service.
	ListModels(ctx context.Context) ([]string, error)
	// Heartbeat probes the service and returns an error if it is unreachable.
	Heartbeat(ctx context.Context) error
}

// Client talks to an Ollama server. It is bound to one endpoint and one pair
// of models; the model configuration registry rebuilds it on every accepted
// configuration change.
type Client struct {
	BaseURL    string
	EmbedModel string
	GenModel   string
	client     *http.Client
}

// NewClient creates a new Ollama client.
func NewClient(baseURL, embedModel, genModel string) *Client {
	return &Client{
		BaseURL:    baseURL,
		EmbedModel: embedModel,
		GenModel:   genModel,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

type embeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// EmbedTexts generates embeddings for the given texts using the configured
// embedding model. The Ollama embeddings endpoint takes one prompt per call,
// so inputs are embedded sequentially. All returned vectors are validated to
// share one dimension.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty embedding returned for text %d", i)
		}
		if i > 0 && len(vec) != len(result[0]) {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(vec), len(result[0]))
		}
		result[i] = vec
	}
	return result, nil
}

func (c *Client) embedOne(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingsResponse
	payload := embeddingsRequest{Model: c.EmbedModel, Prompt: text}
	if err := c.post(ctx, "/api/embeddings", payload, &resp); err != nil {
		return nil, err
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a completion request using the configured generation model
// and returns the raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var resp generateResponse
	payload := generateRequest{Model: c.GenModel, Prompt: prompt, Stream: false}
	if err := c.post(ctx, "/api/generate", payload, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the names of all models the Ollama server has pulled.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Heartbeat probes the Ollama server with a short timeout. A nil return means
// the service answered; it is a best-effort fast-fail check, callers still
// have to handle failures from the actual embed/generate calls.
func (c *Client) Heartbeat(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("service not reachable: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}

// post marshals payload, POSTs it to the given path and decodes the JSON
// response into out.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
