package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/service"
)

// multipartOverhead is allowed on top of the file size for multipart framing.
const multipartOverhead = 1 << 20

// DocumentsHandler handles HTTP requests for an owner's documents.
type DocumentsHandler struct {
	documents      service.DocumentService
	maxUploadBytes int64
}

// NewDocumentsHandler creates a new DocumentsHandler.
// A non-positive maxUploadBytes falls back to service.DefaultMaxUploadBytes.
func NewDocumentsHandler(documents service.DocumentService, maxUploadBytes int64) *DocumentsHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxUploadBytes
	}
	return &DocumentsHandler{
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

// DocumentResponse describes one document.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitzero"`
	// Number of indexed passages
	Chunks int `json:"chunks"`
}

// DocumentListResponse lists an owner's documents.
//
// swagger:model DocumentListResponse
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func toDocumentResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		FileType:    string(doc.FileType),
		FileSize:    doc.FileSize,
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
		Chunks:      len(doc.ChunkIDs),
	}
}

// Upload handles a multipart file upload.
//
// swagger:route POST /api/v1/documents documents uploadDocument
//
// # Upload a document
//
// Accepts a multipart "file" field (pdf, docx, doc or txt), extracts its text and indexes it.
//
// ---
// consumes:
// - multipart/form-data
// produces:
// - application/json
// responses:
//
//	'201':
//	  description: Document indexed
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'400':
//	  description: Missing file or unsupported type
//	'413':
//	  description: File too large
//	'422':
//	  description: Text could not be extracted
//	'502':
//	  description: Embedding or vector store failure
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WarnContext(ctx, "upload too large", "limit", h.maxUploadBytes)
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.WarnContext(ctx, "invalid upload", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		logger.WarnContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	res, err := h.documents.Upload(ctx, service.UploadRequest{
		OwnerID:  contextutil.OwnerIDFromContext(ctx),
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to upload document")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, toDocumentResponse(res.Document))
}

// List handles listing the caller's documents.
//
// swagger:route GET /api/v1/documents documents listDocuments
//
// # List documents
//
// Returns the caller's documents, newest first.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Documents
//	  schema:
//	    "$ref": "#/definitions/DocumentListResponse"
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.documents.List(ctx, contextutil.OwnerIDFromContext(ctx))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}

	resp := DocumentListResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(doc))
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Get handles fetching one document.
//
// swagger:route GET /api/v1/documents/{id} documents getDocument
//
// # Get a document
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Document
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'404':
//	  description: Not found or not owned by the caller
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.documents.Get(ctx, contextutil.OwnerIDFromContext(ctx), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toDocumentResponse(doc))
}

// Delete handles removing one document.
//
// swagger:route DELETE /api/v1/documents/{id} documents deleteDocument
//
// # Delete a document
//
// Removes the document's vectors, record and stored file.
//
// ---
// responses:
//
//	'204':
//	  description: Deleted
//	'404':
//	  description: Not found or not owned by the caller
//	'502':
//	  description: Vector store failure
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.documents.Delete(ctx, contextutil.OwnerIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles coverage stats for the caller's index.
//
// swagger:route GET /api/v1/documents/stats documents documentStats
//
// # Index stats
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Coverage stats
func (h *DocumentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.documents.Stats(ctx, contextutil.OwnerIDFromContext(ctx))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to collect stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}
