package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa-ai/internal/rag"
	ragmocks "docqa-ai/internal/rag/mocks"
	"docqa-ai/internal/service"
)

func TestAskHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(engine *ragmocks.MockEngine)
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name: "successful answer",
			body: `{"question":"What is the capital of France?"}`,
			setup: func(engine *ragmocks.MockEngine) {
				engine.EXPECT().Answer(gomock.Any(), rag.AskRequest{Question: "What is the capital of France?"}).
					Return(rag.AskResponse{
						Answer:         "Paris.",
						Sources:        []rag.Source{{Filename: "france.txt", Chunk: 0, Content: "Paris is..."}},
						ConversationID: "thread-1",
					}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp rag.AskResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Answer != "Paris." || resp.ConversationID != "thread-1" {
					t.Errorf("response = %+v", resp)
				}
				if len(resp.Sources) != 1 || resp.Sources[0].Filename != "france.txt" {
					t.Errorf("sources = %+v", resp.Sources)
				}
			},
		},
		{
			name: "thread id forwarded",
			body: `{"question":"And its population?","conversation_id":"thread-1"}`,
			setup: func(engine *ragmocks.MockEngine) {
				engine.EXPECT().Answer(gomock.Any(), rag.AskRequest{Question: "And its population?", ConversationID: "thread-1"}).
					Return(rag.AskResponse{Answer: "About two million.", Sources: []rag.Source{}, ConversationID: "thread-1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid body",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty question",
			body: `{"question":""}`,
			setup: func(engine *ragmocks.MockEngine) {
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).
					Return(rag.AskResponse{}, fmt.Errorf("%w: no question provided", service.ErrInvalidInput))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "service unavailable",
			body: `{"question":"anything"}`,
			setup: func(engine *ragmocks.MockEngine) {
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).
					Return(rag.AskResponse{}, service.Unavailable("http://localhost:11434", errors.New("refused")))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := ragmocks.NewMockEngine(ctrl)
			if tt.setup != nil {
				tt.setup(engine)
			}

			handler := NewAskHandler(engine)
			req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}
