package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docqa-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata. The payload carries the chunk
// text alongside its provenance (doc_id, filename, folder, chunk_index), so
// the index alone can answer retrieval queries.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single hit from a similarity search, sorted by
// descending score.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection with the given vector size if it
	// does not exist, and validates the size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// DropCollection removes the collection entirely. Dropping a collection
	// that does not exist is not an error.
	DropCollection(ctx context.Context, collection string) error

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k most similar points to the query vector.
	// Searching an empty collection returns an empty result, not an error.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// DeleteByDocument removes every point whose payload doc_id matches,
	// without consulting any application-level state.
	DeleteByDocument(ctx context.Context, collection, docID string) error
}
