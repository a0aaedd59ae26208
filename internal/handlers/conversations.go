package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docqa-ai/internal/storage"
)

// ConversationsHandler handles conversation thread listing, retrieval and deletion.
type ConversationsHandler struct {
	convs storage.ConversationStore
}

// NewConversationsHandler creates a new ConversationsHandler.
func NewConversationsHandler(convs storage.ConversationStore) *ConversationsHandler {
	return &ConversationsHandler{convs: convs}
}

// ConversationSummary is one thread in a listing.
type ConversationSummary struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// MessageResponse is one exchange inside a thread.
type MessageResponse struct {
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Sources   []storage.Source `json:"sources"`
	CreatedAt string           `json:"created_at"`
}

// ConversationResponse is a full thread with its messages.
type ConversationResponse struct {
	ConversationSummary
	Messages []MessageResponse `json:"messages"`
}

// List handles GET /api/conversations.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	convs, err := h.convs.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list conversations")
		return
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, toSummary(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": out})
}

// Get handles GET /api/conversations/{id}.
func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	conv, err := h.convs.Get(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load conversation")
		return
	}

	resp := ConversationResponse{
		ConversationSummary: toSummary(conv),
		Messages:            make([]MessageResponse, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		sources := m.Sources
		if sources == nil {
			sources = []storage.Source{}
		}
		resp.Messages = append(resp.Messages, MessageResponse{
			Question:  m.Question,
			Answer:    m.Answer,
			Sources:   sources,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/conversations/{id}.
func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.convs.Delete(ctx, id); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}

func toSummary(c *storage.ConversationRecord) ConversationSummary {
	return ConversationSummary{
		ID:           c.ID,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.UTC().Format(time.RFC3339),
		MessageCount: c.MessageCount,
	}
}
