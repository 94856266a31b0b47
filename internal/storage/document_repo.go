package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks knowledge-search/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"knowledge-search/internal/domain"
)

// DocumentStore defines the interface for document storage operations.
// Every read and delete is scoped to an owner id.
type DocumentStore interface {
	// Create inserts the document and its chunks in one transaction.
	Create(ctx context.Context, doc *domain.Document, chunks []ChunkRecord) error
	// GetByID returns the document with its chunk ids in passage order.
	// Returns ErrNotFound if it does not exist or belongs to another owner.
	GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error)
	// ListByOwner returns the owner's documents newest first, without content or chunk ids.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error)
	// FindByHash returns the owner's document with the given filename and content hash.
	// Returns ErrNotFound if there is none.
	FindByHash(ctx context.Context, ownerID, filename, contentHash string) (*domain.Document, error)
	// Delete removes the document and, by cascade, its chunks.
	// Returns ErrNotFound if it does not exist or belongs to another owner.
	Delete(ctx context.Context, ownerID, id string) error
	// CountByOwner returns the number of documents the owner has.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts the document and its chunks in one transaction.
// doc.ChunkIDs is set from chunks on success.
func (r *DocumentRepo) Create(ctx context.Context, doc *domain.Document, chunks []ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, filename, file_type, file_size, storage_key, content, content_hash, uploaded_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.Filename, string(doc.FileType), doc.FileSize, doc.StorageKey,
		doc.Content, doc.ContentHash, formatTime(doc.UploadedAt), formatTime(doc.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks (id, document_id, chunk_index, text) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.ChunkIndex, chunk.Text); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
		ids[i] = chunk.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	doc.ChunkIDs = ids
	return nil
}

const documentColumns = "id, owner_id, filename, file_type, file_size, storage_key, content, content_hash, uploaded_at, processed_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var fileType, uploadedAt, processedAt string
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &fileType, &doc.FileSize, &doc.StorageKey,
		&doc.Content, &doc.ContentHash, &uploadedAt, &processedAt); err != nil {
		return nil, err
	}
	doc.FileType = domain.FileType(fileType)

	var err error
	if doc.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	if doc.ProcessedAt, err = parseTime(processedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByID returns the owner's document with its chunk ids.
func (r *DocumentRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	ids, err := NewChunkRepo(r.db).ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.ChunkIDs = ids
	return doc, nil
}

// ListByOwner returns the owner's documents newest first. Content is left empty.
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, filename, file_type, file_size, storage_key, '', content_hash, uploaded_at, processed_at
		 FROM documents WHERE owner_id = ? ORDER BY uploaded_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// FindByHash returns the owner's most recent document with the given filename and content hash.
func (r *DocumentRepo) FindByHash(ctx context.Context, ownerID, filename, contentHash string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+` FROM documents
		 WHERE owner_id = ? AND filename = ? AND content_hash = ?
		 ORDER BY uploaded_at DESC LIMIT 1`,
		ownerID, filename, contentHash,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document by hash: %w", err)
	}
	return doc, nil
}

// Delete removes the owner's document; its chunks are removed by cascade.
func (r *DocumentRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByOwner returns the number of documents the owner has.
func (r *DocumentRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE owner_id = ?", ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
