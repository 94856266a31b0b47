package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"knowledge-search/internal/domain"
)

// MemoryStore is an in-process VectorStore using brute-force cosine similarity.
// It is used for local runs without Qdrant and in tests. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	dimension   int
	collections map[string]map[string]Point
}

// NewMemoryStore creates an empty store. A positive dimension is enforced on every upsert and query.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension:   dimension,
		collections: make(map[string]map[string]Point),
	}
}

// EnsureCollection creates the collection if it does not exist.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension > 0 && vectorSize != s.dimension {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", s.dimension, vectorSize)
	}
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = make(map[string]Point)
	}
	return nil
}

// Upsert inserts or replaces points. The batch is applied only if every point is valid.
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	for _, p := range points {
		if s.dimension > 0 && len(p.Vec) != s.dimension {
			return &domain.VectorStoreError{Op: "upsert", Err: fmt.Errorf("point %s has dimension %d, expected %d", p.ID, len(p.Vec), s.dimension)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Point)
		s.collections[collection] = coll
	}
	for _, p := range points {
		meta := make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}
		vec := make([]float32, len(p.Vec))
		copy(vec, p.Vec)
		coll[p.ID] = Point{ID: p.ID, Vec: vec, Meta: meta}
	}
	return nil
}

// Search scores every point matching filters and returns the top k by descending score.
// Ties are broken by point id.
func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, &domain.VectorStoreError{Op: "search", Err: fmt.Errorf("k must be greater than 0")}
	}
	if s.dimension > 0 && len(query) != s.dimension {
		return nil, &domain.VectorStoreError{Op: "search", Err: fmt.Errorf("query has dimension %d, expected %d", len(query), s.dimension)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0)
	for _, p := range s.collections[collection] {
		if !matches(p.Meta, filters) {
			continue
		}
		meta := make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}
		results = append(results, SearchResult{PointID: p.ID, Score: cosine(query, p.Vec), Meta: meta})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PointID < results[j].PointID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes points by id. Unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	for _, id := range ids {
		delete(coll, id)
	}
	return nil
}

// CollectionExists reports whether the collection has been created.
func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

// Len returns the number of points in collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func matches(meta, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
