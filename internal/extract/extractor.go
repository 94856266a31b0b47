package extract

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"knowledge-search/internal/domain"
)

// minPDFTextLength is the fewest non-space characters a PDF must yield to be considered readable.
const minPDFTextLength = 10

// Extractor turns uploaded file bytes into plain text.
type Extractor struct {
	pdf *PDFExtractor
}

// New creates an extractor that runs pdftotext at pdftotextPath for PDFs.
func New(pdftotextPath string, runner CommandRunner) *Extractor {
	return &Extractor{pdf: NewPDFExtractor(pdftotextPath, runner)}
}

// DetectFileType maps a filename's extension to a recognized file type, case-insensitively.
func DetectFileType(filename string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch domain.FileType(ext) {
	case domain.FileTypePDF, domain.FileTypeDOCX, domain.FileTypeDOC, domain.FileTypeTXT:
		return domain.FileType(ext), nil
	default:
		return "", &domain.UnsupportedFileTypeError{Extension: ext}
	}
}

// Extract returns the plain text of content, dispatching on the filename's extension.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	fileType, err := DetectFileType(filename)
	if err != nil {
		return "", err
	}

	switch fileType {
	case domain.FileTypePDF:
		text, err := e.pdf.Extract(ctx, content)
		if err != nil {
			return "", &domain.ExtractionError{Filename: filename, Err: err}
		}
		if nonSpaceLength(text) < minPDFTextLength {
			return "", &domain.ExtractionError{Filename: filename, Err: ErrImageOnlyPDF}
		}
		return text, nil
	case domain.FileTypeDOCX, domain.FileTypeDOC:
		text, err := extractWordText(content)
		if err != nil {
			return "", &domain.ExtractionError{Filename: filename, Err: err}
		}
		return text, nil
	default:
		return extractPlainText(content), nil
	}
}

// extractPlainText decodes UTF-8, replacing invalid sequences.
func extractPlainText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	return strings.ToValidUTF8(string(content), "�")
}

func nonSpaceLength(s string) int {
	return utf8.RuneCountInString(strings.Join(strings.Fields(s), ""))
}
