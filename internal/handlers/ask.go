package handlers

import (
	"encoding/json"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/rag"
)

// AskHandler handles question answering requests.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest is the HTTP request payload for questions.
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ServeHTTP handles POST /api/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.engine.Answer(ctx, rag.AskRequest{
		Question:       req.Question,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
