package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/llm"
	"knowledge-search/internal/storage"
	"knowledge-search/internal/vectorstore"
)

// DefaultEmbedConcurrency bounds the number of in-flight embedding calls per document.
const DefaultEmbedConcurrency = 8

// Pipeline ingests extracted document text: chunk, embed, upsert vectors, persist the record.
type Pipeline struct {
	documents   storage.DocumentStore
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *TextChunker
	concurrency int
	newID       IDGenerator
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIDGenerator sets the generator used for document ids and vector id tokens.
func WithIDGenerator(gen IDGenerator) Option {
	return func(p *Pipeline) {
		p.newID = gen
	}
}

// WithClock sets the time source for processed-at timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithConcurrency sets the maximum number of concurrent embedding calls.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentStore,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunker *TextChunker,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		documents:   documents,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     chunker,
		concurrency: DefaultEmbedConcurrency,
		newID:       NewUUID,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.chunker == nil {
		p.chunker = NewTextChunker(DefaultMaxTokens)
	}
	return p
}

// NewDocumentID returns a fresh document id from the pipeline's generator.
func (p *Pipeline) NewDocumentID() string {
	return p.newID()
}

// IngestRequest is one document to ingest.
type IngestRequest struct {
	OwnerID  string
	Filename string
	Text     string

	// Optional fields. DocumentID is generated when empty; UploadedAt defaults to now.
	DocumentID string
	FileType   domain.FileType
	FileSize   int64
	StorageKey string
	UploadedAt time.Time
}

// Ingest chunks the text, embeds every passage, upserts the vectors as one batch and then persists
// the document record with its ordered vector ids.
//
// If any embedding fails nothing is written. If the record cannot be persisted after a successful
// upsert, the returned error is a *domain.OrphanedVectorsError listing the vectors left behind.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*domain.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, &domain.ValidationError{Field: "owner_id", Message: "owner id is required"}
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, &domain.ValidationError{Field: "content", Message: "document contains no extractable text"}
	}

	docID := req.DocumentID
	if docID == "" {
		docID = p.newID()
	}

	chunks := p.chunker.Chunk(req.Text)
	logger.DebugContext(ctx, "chunked document", "document_id", docID, "chunks", len(chunks))

	vectors, err := p.embedAll(ctx, chunks)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed passages", "document_id", docID, "error", err)
		return nil, fmt.Errorf("failed to embed passages: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	records := make([]storage.ChunkRecord, len(chunks))
	vectorIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := VectorID(req.OwnerID, docID, chunk.Index)
		vectorIDs[i] = id
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: vectors[i],
			Meta: map[string]any{
				vectorstore.MetaOwnerID:    req.OwnerID,
				vectorstore.MetaDocumentID: docID,
				vectorstore.MetaFilename:   req.Filename,
				vectorstore.MetaChunkIndex: chunk.Index,
				vectorstore.MetaContent:    chunk.Text,
			},
		}
		records[i] = storage.ChunkRecord{
			ID:         id,
			DocumentID: docID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		logger.ErrorContext(ctx, "failed to upsert vectors", "document_id", docID, "error", err)
		return nil, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	uploadedAt := req.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = p.now()
	}
	hash := sha256.Sum256([]byte(req.Text))

	doc := &domain.Document{
		ID:          docID,
		OwnerID:     req.OwnerID,
		Filename:    req.Filename,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		StorageKey:  req.StorageKey,
		Content:     req.Text,
		ContentHash: hex.EncodeToString(hash[:]),
		UploadedAt:  uploadedAt,
		ProcessedAt: p.now(),
	}

	if err := p.documents.Create(ctx, doc, records); err != nil {
		logger.WarnContext(ctx, "document record not persisted, vectors orphaned",
			"document_id", docID, "vector_count", len(vectorIDs), "error", err)
		return nil, &domain.OrphanedVectorsError{VectorIDs: vectorIDs, Err: err}
	}
	doc.ChunkIDs = vectorIDs

	logger.InfoContext(ctx, "ingested document", "document_id", docID, "filename", req.Filename, "chunks", len(chunks))
	return doc, nil
}

// embedAll embeds every chunk concurrently and returns the vectors in chunk order.
// It returns after all calls finish; the first error cancels the rest.
func (p *Pipeline) embedAll(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
