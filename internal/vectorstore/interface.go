package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks knowledge-search/internal/vectorstore VectorStore

import "context"

// Payload keys stored with every passage vector.
const (
	MetaOwnerID    = "owner_id"
	MetaDocumentID = "document_id"
	MetaFilename   = "filename"
	MetaChunkIndex = "chunk_index"
	MetaContent    = "content"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
// Implementations return *domain.VectorStoreError on failure.
type VectorStore interface {
	// Upsert inserts or updates points in the collection as one batch.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns at most k points ordered by descending similarity.
	// filters is an equality map over payload keys; all entries must match.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists reports whether the collection is present.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// MetaString returns the string payload value for key, or "" if it is absent or not a string.
func MetaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// MetaInt returns the integer payload value for key, or -1 if it is absent.
func MetaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return -1
	}
}
