package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/rag"
)

// maxSearchBody bounds the JSON search request.
const maxSearchBody = 64 << 10

// SearchHandler handles HTTP requests for knowledge-base questions.
type SearchHandler struct {
	engine rag.Engine
	md     goldmark.Markdown
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{
		engine: engine,
		// Raw HTML in model output is escaped.
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// SearchRequest represents the HTTP request payload for search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	// The question to answer from the caller's documents
	// required: true
	Query string `json:"query"`
}

// SearchResponse represents the HTTP response payload for search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Answer string `json:"answer"`
	// Answer rendered from markdown to HTML
	AnswerHTML   string          `json:"answer_html"`
	Confidence   int             `json:"confidence"`
	Completeness int             `json:"completeness"`
	Suggestions  []string        `json:"suggestions"`
	Sources      []domain.Source `json:"sources"`
}

// ServeHTTP handles HTTP requests for search.
//
// swagger:route POST /api/v1/search search searchKnowledge
//
// # Ask a question
//
// Retrieves the caller's most relevant passages and synthesizes an answer from them.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer with sources
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
//	'400':
//	  description: Missing or blank query
//	'502':
//	  description: Embedding or vector store failure
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.engine.Answer(ctx, contextutil.OwnerIDFromContext(ctx), req.Query)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer query")
		return
	}

	html, err := h.renderMarkdown([]byte(result.Answer))
	if err != nil {
		// The plain answer is still usable.
		logger.WarnContext(ctx, "failed to render answer", "error", err)
	}

	writeJSON(ctx, w, http.StatusOK, SearchResponse{
		Answer:       result.Answer,
		AnswerHTML:   html,
		Confidence:   result.Confidence,
		Completeness: result.Completeness,
		Suggestions:  result.Suggestions,
		Sources:      result.Sources,
	})
}

func (h *SearchHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
