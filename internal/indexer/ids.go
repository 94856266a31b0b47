package indexer

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh unique token. Tests inject a deterministic one.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// VectorID builds the id of a passage vector from its owner, the document's unique token and the
// passage index. The token makes ids unique across retries of the same upload.
func VectorID(ownerID, token string, index int) string {
	return fmt.Sprintf("%s-%s-%d", ownerID, token, index)
}
