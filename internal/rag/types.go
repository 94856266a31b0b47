package rag

import "knowledge-search/internal/domain"

// DefaultTopK is the number of passages retrieved per query.
const DefaultTopK = 10

const (
	// NoMatchesAnswer is returned when the owner has no passages near the query.
	NoMatchesAnswer = "I couldn't find any relevant information in your knowledge base to answer this question."
	// RawFallbackAnswer replaces a blank raw synthesis output.
	RawFallbackAnswer = "Unable to generate answer"
	// RawFallbackScore is the confidence and completeness reported for raw synthesis output.
	RawFallbackScore = 50
	// RawFallbackSuggestion is the only suggestion reported for raw synthesis output.
	RawFallbackSuggestion = "Please provide more context about this topic"
	// UnknownFilename names a source whose metadata has no filename.
	UnknownFilename = "Unknown"
)

// NoMatchesSuggestions are returned with NoMatchesAnswer.
var NoMatchesSuggestions = []string{
	"Upload documents related to this topic",
	"Try rephrasing your question",
	"Check if the documents are properly processed",
}

// SearchResponse is the answer to a query together with the passages behind it.
type SearchResponse struct {
	// Answer is the natural-language answer. Never empty.
	Answer string `json:"answer"`
	// Confidence is how strongly the retrieved context supports the answer, 0-100.
	Confidence int `json:"confidence"`
	// Completeness is how fully the retrieved context answers the query, 0-100.
	Completeness int `json:"completeness"`
	// Suggestions are ways to improve the result. Possibly empty, never nil.
	Suggestions []string `json:"suggestions"`
	// Sources are the retrieved passages in vector store order.
	Sources []domain.Source `json:"sources"`
}
