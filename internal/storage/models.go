package storage

import "knowledge-search/internal/domain"

// ErrNotFound is returned when a record is not found or not owned by the caller.
var ErrNotFound = domain.ErrNotFound

// ChunkRecord is one stored passage. ID is the passage's vector id.
type ChunkRecord struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
}
