package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa-ai/internal/config"
	"docqa-ai/internal/http"
	"docqa-ai/internal/indexer"
	"docqa-ai/internal/modelconfig"
	"docqa-ai/internal/rag"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	documentRepo := storage.NewDocumentRepo(db)
	conversationRepo := storage.NewConversationRepo(db)
	modelConfigRepo := storage.NewModelConfigRepo(db)

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	slog.Info("Qdrant client ready", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)

	// Model configuration registry: persisted config wins over env defaults
	ctx := context.Background()
	registry, err := modelconfig.NewRegistry(ctx, modelConfigRepo, documentRepo, vectorStore,
		cfg.QdrantCollection,
		modelconfig.Config{
			EmbeddingModel: cfg.EmbeddingModel,
			LLMModel:       cfg.LLMModel,
			BaseURL:        cfg.OllamaBaseURL,
		}, nil)
	if err != nil {
		log.Fatalf("Failed to initialize model configuration: %v", err)
	}
	active := registry.Get()
	slog.Info("Model configuration loaded",
		"embedding_model", active.EmbeddingModel,
		"llm_model", active.LLMModel,
		"base_url", active.BaseURL)

	// Create ingestion pipeline and RAG engine
	pipeline := indexer.NewPipeline(registry, documentRepo, vectorStore, cfg.QdrantCollection)
	engine := rag.NewEngine(registry, vectorStore, cfg.QdrantCollection, conversationRepo)
	documents := service.NewDocumentService(cfg.UploadDir, pipeline, documentRepo)
	slog.Info("RAG engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Engine:         engine,
		Documents:      documents,
		Conversations:  conversationRepo,
		Registry:       registry,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
