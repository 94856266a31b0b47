package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxTokens is the token budget used for ingestion.
	DefaultMaxTokens = 8000
	// charsPerToken is the character-count heuristic behind EstimateTokens.
	charsPerToken = 4.0
)

// EstimateTokens approximates the token count of s as runes/4.
// It is a heuristic, not a tokenizer; callers must treat budgets built on it as soft.
func EstimateTokens(s string) float64 {
	return float64(utf8.RuneCountInString(s)) / charsPerToken
}

// separatorTokens is the cost of the single space used to join pieces of a chunk.
const separatorTokens = 1.0 / charsPerToken

// TextChunker splits extracted document text into token-budgeted passages.
// Sentence boundaries are kept where possible; a sentence that alone exceeds the
// budget is packed word by word. Words are never split.
type TextChunker struct {
	maxTokens int
}

// NewTextChunker creates a chunker with the given token budget.
// A non-positive budget falls back to DefaultMaxTokens.
func NewTextChunker(maxTokens int) *TextChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &TextChunker{maxTokens: maxTokens}
}

// MaxTokens returns the chunker's token budget.
func (c *TextChunker) MaxTokens() int {
	return c.maxTokens
}

// Chunk splits text into indexed chunks. Indexes start at 0 and follow text order.
func (c *TextChunker) Chunk(text string) []Chunk {
	texts := ChunkText(text, c.maxTokens)
	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{Index: i, Text: t}
	}
	return chunks
}

// ChunkText splits text into passages whose estimated token count is at most maxTokens.
//
// Text within budget is returned unchanged as the only element (including the empty string).
// Otherwise the text is split into sentences on ".", "!" or "?" followed by whitespace, and
// sentences are packed greedily, joined by single spaces. A sentence over budget on its own is
// split on whitespace and its words are packed the same way. A single word longer than the
// budget is emitted whole as its own chunk.
func ChunkText(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	budget := float64(maxTokens)

	if EstimateTokens(text) <= budget {
		return []string{text}
	}

	var chunks []string
	acc := newAccumulator(budget, func(chunk string) {
		chunks = append(chunks, chunk)
	})

	for _, sentence := range splitSentences(text) {
		if sentence == "" {
			continue
		}
		if EstimateTokens(sentence) > budget {
			// Oversized sentence: close the open chunk and pack its words separately.
			acc.flush()
			for _, word := range strings.Fields(sentence) {
				acc.add(word)
			}
			acc.flush()
			continue
		}
		acc.add(sentence)
	}
	acc.flush()

	if len(chunks) == 0 {
		// Whitespace-only text over budget carries no words.
		return []string{""}
	}
	return chunks
}

// accumulator packs pieces into chunks with the accumulate-and-flush rule.
type accumulator struct {
	budget float64
	emit   func(string)
	parts  []string
	tokens float64
}

func newAccumulator(budget float64, emit func(string)) *accumulator {
	return &accumulator{budget: budget, emit: emit}
}

// add appends piece to the open chunk, flushing first if it would overflow the budget.
func (a *accumulator) add(piece string) {
	cost := EstimateTokens(piece)
	if len(a.parts) > 0 && a.tokens+separatorTokens+cost > a.budget {
		a.flush()
	}
	if len(a.parts) > 0 {
		cost += separatorTokens
	}
	a.parts = append(a.parts, piece)
	a.tokens += cost
}

// flush emits the open chunk, if any, joined with single spaces.
func (a *accumulator) flush() {
	if len(a.parts) == 0 {
		return
	}
	a.emit(strings.Join(a.parts, " "))
	a.parts = a.parts[:0]
	a.tokens = 0
}

// splitSentences splits text after ".", "!" or "?" when followed by whitespace.
// The punctuation stays with its sentence; only the whitespace run is dropped.
// Abbreviations such as "Dr. Smith" split as well.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		end := i
		j := i
		for j < len(text) {
			next, nextSize := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(next) {
				break
			}
			j += nextSize
		}
		if j == end {
			continue
		}

		sentences = append(sentences, text[start:end])
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
