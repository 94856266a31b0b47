package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"knowledge-search/internal/storage"
)

// ChunkerVersion identifies the chunking algorithm.
// Update this when chunk boundaries would change for the same input.
const ChunkerVersion = "v2.0"

// CoverageStats describes one owner's index.
type CoverageStats struct {
	// Documents is the number of ingested documents.
	Documents int `json:"documents"`
	// Chunks is the number of stored passages across all documents.
	Chunks int `json:"chunks"`
	// ChunkTokenStats summarizes estimated tokens per passage.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash of chunker version, embedding model and budget.
	IndexVersion string `json:"index_version"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// StatsCollector computes coverage stats from the document store.
type StatsCollector struct {
	documents      storage.DocumentStore
	chunks         storage.ChunkStore
	embeddingModel string
	maxTokens      int
}

// NewStatsCollector creates a new stats collector.
func NewStatsCollector(documents storage.DocumentStore, chunks storage.ChunkStore, embeddingModel string, maxTokens int) *StatsCollector {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &StatsCollector{
		documents:      documents,
		chunks:         chunks,
		embeddingModel: embeddingModel,
		maxTokens:      maxTokens,
	}
}

// Collect computes coverage stats for one owner.
func (s *StatsCollector) Collect(ctx context.Context, ownerID string) (*CoverageStats, error) {
	count, err := s.documents.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	texts, err := s.chunks.ListTextsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	tokenCounts := make([]int, 0, len(texts))
	for _, text := range texts {
		n := int(math.Round(EstimateTokens(text)))
		if n < 1 {
			n = 1
		}
		tokenCounts = append(tokenCounts, n)
	}

	return &CoverageStats{
		Documents:       count,
		Chunks:          len(texts),
		ChunkTokenStats: computeTokenStats(tokenCounts),
		ChunkerVersion:  ChunkerVersion,
		IndexVersion:    IndexVersion(s.embeddingModel, s.maxTokens),
	}, nil
}

// IndexVersion returns a 16 hex character hash identifying an index build.
func IndexVersion(embeddingModel string, maxTokens int) string {
	input := fmt.Sprintf("%s|%s|maxTokens=%d", ChunkerVersion, embeddingModel, maxTokens)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
