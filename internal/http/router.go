package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa-ai/internal/handlers"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/rag"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         rag.Engine
	Documents      service.Documents
	Conversations  storage.ConversationStore
	Registry       *modelconfig.Registry
	MaxUploadBytes int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.Documents, deps.MaxUploadBytes)
	askHandler := handlers.NewAskHandler(deps.Engine)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents)
	conversationsHandler := handlers.NewConversationsHandler(deps.Conversations)
	modelsHandler := handlers.NewModelsHandler(deps.Registry)

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/ask", askHandler)

		r.Get("/documents", documentsHandler.List)
		r.Delete("/documents/{id}", documentsHandler.Delete)
		r.Put("/documents/{id}/folder", documentsHandler.UpdateFolder)
		r.Get("/folders", documentsHandler.Folders)

		r.Get("/conversations", conversationsHandler.List)
		r.Get("/conversations/{id}", conversationsHandler.Get)
		r.Delete("/conversations/{id}", conversationsHandler.Delete)

		r.Get("/models", modelsHandler.ListModels)
		r.Get("/models/config", modelsHandler.GetConfig)
		r.Put("/models/config", modelsHandler.UpdateConfig)
	})

	return r
}
