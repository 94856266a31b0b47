package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks knowledge-search/internal/llm Embedder,ChatClient,AnswerSynthesizer

import (
	"context"

	"knowledge-search/internal/domain"
)

// Embedder turns text into a fixed-length vector.
// Implementations must be safe for concurrent use and fail with *domain.EmbeddingError.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatClient sends chat completion requests.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

// AnswerSynthesizer produces an answer to query grounded on the given context passages.
// Unparseable model output is returned as the raw variant, not as an error.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query string, passages []string) (domain.Synthesis, error)
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32

	// JSONMode requests a JSON object response format.
	JSONMode bool
}
