package handlers

import (
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
)

// UploadHandler handles document uploads.
type UploadHandler struct {
	documents service.Documents
	maxBytes  int64
}

// NewUploadHandler creates a new UploadHandler. maxBytes caps the accepted
// request body size.
func NewUploadHandler(documents service.Documents, maxBytes int64) *UploadHandler {
	return &UploadHandler{documents: documents, maxBytes: maxBytes}
}

// UploadResponse is the payload returned after a successful upload.
type UploadResponse struct {
	Message  string `json:"message"`
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Folder   string `json:"folder,omitempty"`
}

// ServeHTTP handles POST /api/upload with a multipart form holding the file
// and an optional folder field.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	doc, err := h.documents.Upload(ctx, header.Filename, r.FormValue("folder"), file)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process uploaded file")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:  "File uploaded and processed successfully",
		DocID:    doc.ID,
		Filename: doc.Filename,
		Chunks:   doc.ChunkCount,
		Folder:   doc.Folder,
	})
}
