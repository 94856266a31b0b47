package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks knowledge-search/internal/rag Engine

import (
	"context"
	"fmt"
	"strings"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/llm"
	"knowledge-search/internal/vectorstore"
)

// Engine answers queries from an owner's indexed passages.
type Engine interface {
	// Answer retrieves the owner's passages nearest to query and synthesizes an answer from them.
	Answer(ctx context.Context, ownerID, query string) (SearchResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	synthesizer llm.AnswerSynthesizer
	topK        int
}

// NewEngine creates a new RAG engine. A non-positive topK falls back to DefaultTopK.
func NewEngine(
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	synthesizer llm.AnswerSynthesizer,
	topK int,
) Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Answer answers a query using RAG.
func (e *ragEngine) Answer(ctx context.Context, ownerID, query string) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return SearchResponse{}, &domain.ValidationError{Field: "query", Message: "query is required"}
	}

	logger.InfoContext(ctx, "RAG query started", "owner_id", ownerID, "query_length", len(query), "k", e.topK)

	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return SearchResponse{}, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := e.vectorStore.Search(ctx, e.collection, queryVector, e.topK, map[string]any{
		vectorstore.MetaOwnerID: ownerID,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return SearchResponse{}, fmt.Errorf("failed to search vector store: %w", err)
	}

	logger.InfoContext(ctx, "vector search completed", "results_count", len(results))
	if len(results) == 0 {
		return noMatchesResponse(), nil
	}

	passages := make([]string, 0, len(results))
	sources := make([]domain.Source, 0, len(results))
	for _, result := range results {
		content := vectorstore.MetaString(result.Meta, vectorstore.MetaContent)
		if content != "" {
			passages = append(passages, content)
		}

		filename := vectorstore.MetaString(result.Meta, vectorstore.MetaFilename)
		if filename == "" {
			filename = UnknownFilename
		}
		sources = append(sources, domain.Source{
			Filename: filename,
			Content:  content,
			Score:    result.Score,
		})
	}

	logger.DebugContext(ctx, "context assembled", "passages", len(passages), "matches", len(results))

	synthesis, err := e.synthesizer.Synthesize(ctx, query, passages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to synthesize answer", "error", err)
		return SearchResponse{}, fmt.Errorf("failed to synthesize answer: %w", err)
	}

	resp := fromSynthesis(synthesis)
	resp.Sources = sources

	logger.InfoContext(ctx, "RAG query completed",
		"sources", len(sources),
		"confidence", resp.Confidence,
		"completeness", resp.Completeness,
	)
	return resp, nil
}

// fromSynthesis converts either synthesis variant into a response without sources.
func fromSynthesis(s domain.Synthesis) SearchResponse {
	switch s.Kind {
	case domain.SynthesisStructured:
		answer := s.Answer.Answer
		if strings.TrimSpace(answer) == "" {
			answer = RawFallbackAnswer
		}
		suggestions := s.Answer.Suggestions
		if suggestions == nil {
			suggestions = []string{}
		}
		return SearchResponse{
			Answer:       answer,
			Confidence:   s.Answer.Confidence,
			Completeness: s.Answer.Completeness,
			Suggestions:  suggestions,
		}
	default:
		answer := s.Raw
		if strings.TrimSpace(answer) == "" {
			answer = RawFallbackAnswer
		}
		return SearchResponse{
			Answer:       answer,
			Confidence:   RawFallbackScore,
			Completeness: RawFallbackScore,
			Suggestions:  []string{RawFallbackSuggestion},
		}
	}
}

func noMatchesResponse() SearchResponse {
	suggestions := make([]string, len(NoMatchesSuggestions))
	copy(suggestions, NoMatchesSuggestions)
	return SearchResponse{
		Answer:       NoMatchesAnswer,
		Confidence:   0,
		Completeness: 0,
		Suggestions:  suggestions,
		Sources:      []domain.Source{},
	}
}
