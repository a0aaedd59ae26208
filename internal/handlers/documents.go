package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
)

// DocumentsHandler handles document listing, deletion and folder operations.
type DocumentsHandler struct {
	documents service.Documents
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents service.Documents) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// DocumentResponse is one document in a listing.
type DocumentResponse struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	Folder     string `json:"folder,omitempty"`
	Chunks     int    `json:"chunks"`
	Preview    string `json:"preview"`
	UploadedAt string `json:"uploaded_at"`
}

// List handles GET /api/documents with an optional folder query parameter.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.documents.List(ctx, r.URL.Query().Get("folder"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.documents.Delete(ctx, id); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted", "doc_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// FolderRequest is the payload for folder label updates.
type FolderRequest struct {
	Folder string `json:"folder"`
}

// UpdateFolder handles PUT /api/documents/{id}/folder.
func (h *DocumentsHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.documents.UpdateFolder(ctx, id, req.Folder); err != nil {
		handleServiceError(w, ctx, err, "Failed to update folder")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Folder updated successfully"})
}

// Folders handles GET /api/folders.
func (h *DocumentsHandler) Folders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folders, err := h.documents.Folders(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list folders")
		return
	}
	if folders == nil {
		folders = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

func toDocumentResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		DocID:      doc.ID,
		Filename:   doc.Filename,
		Folder:     doc.Folder,
		Chunks:     doc.ChunkCount,
		Preview:    doc.Preview,
		UploadedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
