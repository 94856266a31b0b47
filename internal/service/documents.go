package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks knowledge-search/internal/service DocumentService

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"knowledge-search/internal/blobstore"
	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/extract"
	"knowledge-search/internal/indexer"
	"knowledge-search/internal/storage"
	"knowledge-search/internal/vectorstore"
)

// DefaultMaxUploadBytes is the largest accepted upload.
const DefaultMaxUploadBytes = 25 << 20

// TextExtractor turns file bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

// Ingester chunks, embeds and indexes extracted text.
type Ingester interface {
	Ingest(ctx context.Context, req indexer.IngestRequest) (*domain.Document, error)
	NewDocumentID() string
}

// StatsCollector computes an owner's coverage stats.
type StatsCollector interface {
	Collect(ctx context.Context, ownerID string) (*indexer.CoverageStats, error)
}

// UploadRequest is one file to add to an owner's knowledge base.
type UploadRequest struct {
	OwnerID  string
	Filename string
	Content  []byte
	// SkipUnchanged returns the existing document instead of ingesting again when the owner
	// already has a file with this name and the same extracted text.
	SkipUnchanged bool
}

// UploadResult is the outcome of an upload.
type UploadResult struct {
	Document *domain.Document
	// Unchanged is set when SkipUnchanged matched an existing document.
	Unchanged bool
}

// DocumentService manages an owner's documents.
type DocumentService interface {
	// Upload validates, extracts, stores and ingests a file.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	// List returns the owner's documents newest first.
	List(ctx context.Context, ownerID string) ([]*domain.Document, error)
	// Get returns one of the owner's documents.
	Get(ctx context.Context, ownerID, id string) (*domain.Document, error)
	// Delete removes the document's vectors, record and blob.
	Delete(ctx context.Context, ownerID, id string) error
	// Stats returns the owner's coverage stats.
	Stats(ctx context.Context, ownerID string) (*indexer.CoverageStats, error)
}

// documentService implements DocumentService.
type documentService struct {
	extractor      TextExtractor
	ingester       Ingester
	documents      storage.DocumentStore
	blobs          blobstore.BlobStore
	vectorStore    vectorstore.VectorStore
	collection     string
	stats          StatsCollector
	maxUploadBytes int64
}

// NewDocumentService creates a new DocumentService.
// A non-positive maxUploadBytes falls back to DefaultMaxUploadBytes.
func NewDocumentService(
	extractor TextExtractor,
	ingester Ingester,
	documents storage.DocumentStore,
	blobs blobstore.BlobStore,
	vectorStore vectorstore.VectorStore,
	collection string,
	stats StatsCollector,
	maxUploadBytes int64,
) DocumentService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &documentService{
		extractor:      extractor,
		ingester:       ingester,
		documents:      documents,
		blobs:          blobs,
		vectorStore:    vectorStore,
		collection:     collection,
		stats:          stats,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload processes one uploaded file.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := requireOwner(req.OwnerID); err != nil {
		return nil, err
	}
	filename := filepath.Base(strings.TrimSpace(req.Filename))
	if filename == "." || filename == string(filepath.Separator) {
		return nil, &domain.ValidationError{Field: "file", Message: "filename is required"}
	}
	if len(req.Content) == 0 {
		return nil, &domain.ValidationError{Field: "file", Message: "file is empty"}
	}
	if int64(len(req.Content)) > s.maxUploadBytes {
		return nil, &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadBytes),
		}
	}

	fileType, err := extract.DetectFileType(filename)
	if err != nil {
		logger.WarnContext(ctx, "rejected upload", "filename", filename, "error", err)
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, req.Content, filename)
	if err != nil {
		logger.WarnContext(ctx, "failed to extract text", "filename", filename, "error", err)
		return nil, err
	}

	if req.SkipUnchanged {
		hash := sha256.Sum256([]byte(text))
		existing, err := s.documents.FindByHash(ctx, req.OwnerID, filename, hex.EncodeToString(hash[:]))
		switch {
		case err == nil:
			logger.InfoContext(ctx, "skipping unchanged document", "document_id", existing.ID, "filename", filename)
			return &UploadResult{Document: existing, Unchanged: true}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, WrapError(err, "failed to look up document")
		}
	}

	docID := s.ingester.NewDocumentID()
	key := blobstore.DocumentKey(req.OwnerID, docID, filename)
	if err := s.blobs.Put(ctx, key, req.Content); err != nil {
		logger.ErrorContext(ctx, "failed to store file", "key", key, "error", err)
		return nil, WrapError(err, "failed to store file")
	}

	doc, err := s.ingester.Ingest(ctx, indexer.IngestRequest{
		OwnerID:    req.OwnerID,
		Filename:   filename,
		Text:       text,
		DocumentID: docID,
		FileType:   fileType,
		FileSize:   int64(len(req.Content)),
		StorageKey: key,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			logger.WarnContext(ctx, "failed to remove blob after ingest failure", "key", key, "error", delErr)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "document uploaded", "document_id", doc.ID, "filename", filename, "chunks", len(doc.ChunkIDs))
	return &UploadResult{Document: doc}, nil
}

// List returns the owner's documents newest first.
func (s *documentService) List(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return docs, nil
}

// Get returns one of the owner's documents.
func (s *documentService) Get(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	doc, err := s.documents.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, WrapError(err, "failed to get document")
	}
	return doc, nil
}

// Delete removes the vectors first, then the record (chunks cascade), then the blob.
// A vector store failure leaves everything in place. A blob failure is logged only.
func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := requireOwner(ownerID); err != nil {
		return err
	}
	doc, err := s.documents.GetByID(ctx, ownerID, id)
	if err != nil {
		return WrapError(err, "failed to get document")
	}

	if len(doc.ChunkIDs) > 0 {
		if err := s.vectorStore.Delete(ctx, s.collection, doc.ChunkIDs); err != nil {
			logger.ErrorContext(ctx, "failed to delete vectors", "document_id", id, "error", err)
			return WrapError(err, "failed to delete vectors")
		}
	}

	if err := s.documents.Delete(ctx, ownerID, id); err != nil {
		return WrapError(err, "failed to delete document")
	}

	if doc.StorageKey != "" {
		if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
			logger.WarnContext(ctx, "failed to delete blob", "key", doc.StorageKey, "error", err)
		}
	}

	logger.InfoContext(ctx, "document deleted", "document_id", id, "vectors", len(doc.ChunkIDs))
	return nil
}

// Stats returns the owner's coverage stats.
func (s *documentService) Stats(ctx context.Context, ownerID string) (*indexer.CoverageStats, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	stats, err := s.stats.Collect(ctx, ownerID)
	if err != nil {
		return nil, WrapError(err, "failed to collect stats")
	}
	return stats, nil
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
