package domain

import "time"

// FileType is one of the recognized upload kinds.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeDOC  FileType = "doc"
	FileTypeTXT  FileType = "txt"
)

// Document is one ingested file.
// ChunkIDs holds the vector ids of its passages in passage order.
type Document struct {
	ID          string
	OwnerID     string
	Filename    string
	FileType    FileType
	FileSize    int64
	StorageKey  string
	Content     string
	ContentHash string // SHA256 hex of the extracted text
	ChunkIDs    []string
	UploadedAt  time.Time
	ProcessedAt time.Time
}

// Passage is one token-budgeted slice of a document's text.
type Passage struct {
	DocumentID string
	OwnerID    string
	Index      int
	Text       string
	Vector     []float32
}

// Source is one retrieved passage reported alongside an answer.
type Source struct {
	Filename string  `json:"filename"`
	Content  string  `json:"content"`
	Score    float32 `json:"score"`
}

// SynthesizedAnswer is the structured output of answer synthesis.
// Confidence and Completeness are in [0,100].
type SynthesizedAnswer struct {
	Answer       string   `json:"answer"`
	Confidence   int      `json:"confidence"`
	Completeness int      `json:"completeness"`
	Suggestions  []string `json:"suggestions"`
}

// SynthesisKind tags which variant a Synthesis holds.
type SynthesisKind int

const (
	// SynthesisStructured means Answer holds a parsed structured result.
	SynthesisStructured SynthesisKind = iota
	// SynthesisRaw means the model output could not be interpreted; Raw holds it verbatim.
	SynthesisRaw
)

// Synthesis is the result of an answer synthesis call: either a structured answer or raw text.
type Synthesis struct {
	Kind   SynthesisKind
	Answer SynthesizedAnswer
	Raw    string
}

// StructuredSynthesis builds the structured variant.
func StructuredSynthesis(answer SynthesizedAnswer) Synthesis {
	return Synthesis{Kind: SynthesisStructured, Answer: answer}
}

// RawSynthesis builds the raw-text variant.
func RawSynthesis(raw string) Synthesis {
	return Synthesis{Kind: SynthesisRaw, Raw: raw}
}
