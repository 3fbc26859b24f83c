package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks mga-chatbot/internal/vectorstore VectorStore

import "context"

// Point represents a chunk vector with its payload.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
// Score is the cosine similarity reported by the store.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection, or validates its vector size if it exists.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k points closest to query.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// DeleteCollection drops the collection and all its points.
	DeleteCollection(ctx context.Context, collection string) error
}
