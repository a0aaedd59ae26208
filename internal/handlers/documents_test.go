package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docqa-ai/internal/service"
	servicemocks "docqa-ai/internal/service/mocks"
	"docqa-ai/internal/storage"
)

// documentsRouter mounts the handler the way the API router does, so URL
// parameters resolve.
func documentsRouter(h *DocumentsHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/documents", h.List)
	r.Delete("/api/documents/{id}", h.Delete)
	r.Put("/api/documents/{id}/folder", h.UpdateFolder)
	r.Get("/api/folders", h.Folders)
	return r
}

func TestDocumentsHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	documents.EXPECT().List(gomock.Any(), "").Return([]*storage.DocumentRecord{
		{ID: "d1", Filename: "a.txt", Folder: "work", ChunkCount: 2, Preview: "alpha", CreatedAt: created},
		{ID: "d2", Filename: "b.txt", ChunkCount: 1, Preview: "beta", CreatedAt: created},
	}, nil)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Documents []DocumentResponse `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(resp.Documents))
	}
	first := resp.Documents[0]
	if first.DocID != "d1" || first.Filename != "a.txt" || first.Folder != "work" || first.Chunks != 2 {
		t.Errorf("documents[0] = %+v", first)
	}
	if first.UploadedAt != "2025-06-01T10:00:00Z" {
		t.Errorf("uploaded_at = %q", first.UploadedAt)
	}
}

func TestDocumentsHandler_List_FolderFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	documents.EXPECT().List(gomock.Any(), "work").Return(nil, nil)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodGet, "/api/documents?folder=work", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// An empty listing still serializes as an array.
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"documents":[]`)) {
		t.Errorf("body = %s, want empty documents array", rec.Body.String())
	}
}

func TestDocumentsHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", err: nil, wantStatus: http.StatusOK},
		{name: "not found", err: fmt.Errorf("%w: document d1", service.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "storage failure", err: fmt.Errorf("%w: qdrant down", service.ErrStorageFailure), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			documents := servicemocks.NewMockDocuments(ctrl)
			documents.EXPECT().Delete(gomock.Any(), "d1").Return(tt.err)

			router := documentsRouter(NewDocumentsHandler(documents))
			req := httptest.NewRequest(http.MethodDelete, "/api/documents/d1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDocumentsHandler_UpdateFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	documents.EXPECT().UpdateFolder(gomock.Any(), "d1", "archive").Return(nil)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodPut, "/api/documents/d1/folder", bytes.NewReader([]byte(`{"folder":"archive"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
}

func TestDocumentsHandler_UpdateFolder_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodPut, "/api/documents/d1/folder", bytes.NewReader([]byte(`{broken`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDocumentsHandler_Folders(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	documents.EXPECT().Folders(gomock.Any()).Return([]string{"archive", "work"}, nil)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Folders []string `json:"folders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Folders) != 2 || resp.Folders[0] != "archive" {
		t.Errorf("folders = %v", resp.Folders)
	}
}

func TestDocumentsHandler_Folders_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := servicemocks.NewMockDocuments(ctrl)

	documents.EXPECT().Folders(gomock.Any()).Return(nil, nil)

	router := documentsRouter(NewDocumentsHandler(documents))
	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"folders":[]`)) {
		t.Errorf("body = %s, want empty folders array", rec.Body.String())
	}
}
