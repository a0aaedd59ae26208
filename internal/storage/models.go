package storage

import "time"

// DocumentRecord is the durable metadata for one ingested document. A record
// exists exactly when the document's chunks exist in the vector index under
// the same ID.
type DocumentRecord struct {
	ID          string // UUID, generated at ingestion
	Filename    string
	Folder      string // optional grouping label, empty means ungrouped
	ChunkCount  int
	StoragePath string // where the original uploaded file lives
	Preview     string // first ~500 characters of extracted text
	CreatedAt   time.Time
}

// ConversationRecord is one question/answer thread.
type ConversationRecord struct {
	ID           string // UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Messages     []MessageRecord // populated by Get, empty in List
}

// MessageRecord is a single immutable question/answer exchange in a thread.
type MessageRecord struct {
	Question  string
	Answer    string
	Sources   []Source
	CreatedAt time.Time
}

// Source is one citation attached to an answer.
type Source struct {
	Filename string `json:"source"`
	Chunk    int    `json:"chunk"`
	Content  string `json:"content"`
}

// ModelConfigRecord is the persisted singleton model configuration.
type ModelConfigRecord struct {
	EmbeddingModel string
	LLMModel       string
	BaseURL        string
	UpdatedAt      time.Time
}
