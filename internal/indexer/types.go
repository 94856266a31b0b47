package indexer

// Chunk represents one passage of a document's text.
type Chunk struct {
	Index int    // Chunk index within the document (starts at 0)
	Text  string // Chunk text content
}
