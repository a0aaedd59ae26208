package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docqa-ai/internal/storage"
	storagemocks "docqa-ai/internal/storage/mocks"
)

func conversationsRouter(h *ConversationsHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/conversations", h.List)
	r.Get("/api/conversations/{id}", h.Get)
	r.Delete("/api/conversations/{id}", h.Delete)
	return r
}

func TestConversationsHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	convs := storagemocks.NewMockConversationStore(ctrl)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	convs.EXPECT().List(gomock.Any()).Return([]*storage.ConversationRecord{
		{ID: "t1", CreatedAt: ts, UpdatedAt: ts, MessageCount: 3},
		{ID: "t2", CreatedAt: ts, UpdatedAt: ts, MessageCount: 1},
	}, nil)

	router := conversationsRouter(NewConversationsHandler(convs))
	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Conversations) != 2 {
		t.Fatalf("conversations = %d, want 2", len(resp.Conversations))
	}
	if resp.Conversations[0].ID != "t1" || resp.Conversations[0].MessageCount != 3 {
		t.Errorf("conversations[0] = %+v", resp.Conversations[0])
	}
	if resp.Conversations[0].CreatedAt != "2025-06-01T10:00:00Z" {
		t.Errorf("created_at = %q", resp.Conversations[0].CreatedAt)
	}
}

func TestConversationsHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	convs := storagemocks.NewMockConversationStore(ctrl)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	convs.EXPECT().Get(gomock.Any(), "t1").Return(&storage.ConversationRecord{
		ID: "t1", CreatedAt: ts, UpdatedAt: ts, MessageCount: 1,
		Messages: []storage.MessageRecord{
			{
				Question:  "What is Paris?",
				Answer:    "The capital of France.",
				Sources:   []storage.Source{{Filename: "france.txt", Chunk: 0, Content: "excerpt"}},
				CreatedAt: ts,
			},
		},
	}, nil)

	router := conversationsRouter(NewConversationsHandler(convs))
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ConversationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "t1" || len(resp.Messages) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	msg := resp.Messages[0]
	if msg.Question != "What is Paris?" || msg.Answer != "The capital of France." {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.Sources) != 1 || msg.Sources[0].Filename != "france.txt" {
		t.Errorf("sources = %+v", msg.Sources)
	}
}

func TestConversationsHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	convs := storagemocks.NewMockConversationStore(ctrl)

	convs.EXPECT().Get(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	router := conversationsRouter(NewConversationsHandler(convs))
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConversationsHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	convs := storagemocks.NewMockConversationStore(ctrl)

	convs.EXPECT().Delete(gomock.Any(), "t1").Return(nil)

	router := conversationsRouter(NewConversationsHandler(convs))
	req := httptest.NewRequest(http.MethodDelete, "/api/conversations/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestConversationsHandler_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	convs := storagemocks.NewMockConversationStore(ctrl)

	convs.EXPECT().Delete(gomock.Any(), "missing").Return(storage.ErrNotFound)

	router := conversationsRouter(NewConversationsHandler(convs))
	req := httptest.NewRequest(http.MethodDelete, "/api/conversations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
