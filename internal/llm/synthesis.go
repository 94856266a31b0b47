package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
)

// DefaultSynthesisTemperature keeps answers close to the retrieved context.
const DefaultSynthesisTemperature float32 = 0.3

// Synthesizer asks a chat model for a scored answer grounded on retrieved passages.
type Synthesizer struct {
	chat        ChatClient
	temperature float32
}

// NewSynthesizer creates a synthesizer. A non-positive temperature uses DefaultSynthesisTemperature.
func NewSynthesizer(chat ChatClient, temperature float32) *Synthesizer {
	if temperature <= 0 {
		temperature = DefaultSynthesisTemperature
	}
	return &Synthesizer{chat: chat, temperature: temperature}
}

// Synthesize sends the query and passages to the model and parses its reply.
// Only transport failures are returned as errors; malformed replies become the raw variant.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, passages []string) (domain.Synthesis, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages := []Message{
		{Role: "system", Content: BuildSynthesisPrompt(passages)},
		{Role: "user", Content: query},
	}

	reply, err := s.chat.ChatWithMessages(ctx, messages, ChatParams{
		Temperature: s.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("failed to synthesize answer: %w", err)
	}

	result := ParseSynthesis(reply)
	if result.Kind == domain.SynthesisRaw {
		logger.WarnContext(ctx, "synthesis reply was not structured, using raw text", "reply_len", len(reply))
	}
	return result, nil
}

// BuildSynthesisPrompt builds the system prompt carrying the context passages.
func BuildSynthesisPrompt(passages []string) string {
	var b strings.Builder
	b.WriteString("You answer questions using only the context below, taken from the user's own documents.\n")
	b.WriteString("Judge how well the context supports your answer and how complete it is, and say which\n")
	b.WriteString("documents or information would improve the knowledge base.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(passages, "\n\n"))
	b.WriteString("\n\nRespond with a JSON object only, in this shape:\n")
	b.WriteString(`{"answer": "<answer>", "confidence": <0-100>, "completeness": <0-100>, "suggestions": ["<suggestion>"]}`)
	b.WriteString("\nconfidence: how strongly the context supports the answer.\n")
	b.WriteString("completeness: how much of a full answer the context covers.\n")
	return b.String()
}

type synthesisPayload struct {
	Answer       *string  `json:"answer"`
	Confidence   float64  `json:"confidence"`
	Completeness float64  `json:"completeness"`
	Suggestions  []string `json:"suggestions"`
}

// ParseSynthesis interprets a model reply as a structured answer.
// The reply may be wrapped in a markdown code fence. Scores are rounded and clamped to [0,100].
// A reply that is not a JSON object with a non-blank answer is returned as the raw variant.
func ParseSynthesis(reply string) domain.Synthesis {
	body := stripCodeFence(reply)

	var payload synthesisPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return domain.RawSynthesis(reply)
	}
	if payload.Answer == nil || strings.TrimSpace(*payload.Answer) == "" {
		return domain.RawSynthesis(reply)
	}

	suggestions := make([]string, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}

	return domain.StructuredSynthesis(domain.SynthesizedAnswer{
		Answer:       *payload.Answer,
		Confidence:   clampScore(payload.Confidence),
		Completeness: clampScore(payload.Completeness),
		Suggestions:  suggestions,
	})
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line, e.g. "json".
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
