package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

var (
	// ErrImageOnlyPDF is returned when a PDF yields too little text to be useful.
	ErrImageOnlyPDF = errors.New("PDF appears to be image-based or encrypted")
	// ErrPDFToolNotFound is returned when pdftotext cannot be started.
	ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")
)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run runs the command and returns its standard output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if errors.Is(err, exec.ErrNotFound) {
		return nil, ErrPDFToolNotFound
	}
	return out, err
}

// PDFExtractor extracts text from PDFs with pdftotext.
type PDFExtractor struct {
	path   string
	runner CommandRunner
}

// NewPDFExtractor creates a PDF extractor. A nil runner uses ExecRunner.
func NewPDFExtractor(path string, runner CommandRunner) *PDFExtractor {
	if path == "" {
		path = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PDFExtractor{path: path, runner: runner}
}

// Extract writes content to a temporary file and returns pdftotext's output for it.
func (p *PDFExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, p.path, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
