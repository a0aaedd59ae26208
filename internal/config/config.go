package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort          string
	DBPath           string
	UploadDir        string
	QdrantURL        string
	QdrantCollection string

	// Defaults for the model configuration registry. These only apply on
	// first start; once a configuration row exists in the database it wins.
	OllamaBaseURL  string
	EmbeddingModel string
	LLMModel       string

	MaxUploadBytes int64
	LogLevel       slog.Level
	LogFormat      string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up towards the project root looking for a .env file
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:          getEnv("API_PORT", "8000"),
		DBPath:           getEnv("DB_PATH", "./data/docqa.db"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "documents"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		LLMModel:         getEnv("LLM_MODEL", "llama3.2"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	maxUploadMB := getEnv("MAX_UPLOAD_MB", "50")
	mb, err := strconv.ParseInt(maxUploadMB, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a valid integer: %w", err)
	}
	if mb <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be greater than 0")
	}
	cfg.MaxUploadBytes = mb * 1024 * 1024

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Create the data and upload directories if they don't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel converts a LOG_LEVEL string to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (want debug, info, warn or error)", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
