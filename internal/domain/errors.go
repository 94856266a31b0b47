package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested resource does not exist for the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when no owner identity could be established.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError represents a validation error with a field name.
// It is returned before any external call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedFileTypeError is returned when a file's extension is not one of the recognized kinds.
type UnsupportedFileTypeError struct {
	Extension string
}

func (e *UnsupportedFileTypeError) Error() string {
	if e.Extension == "" {
		return "unsupported file type: file has no extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

// Is reports UnsupportedFileTypeError as ErrInvalidInput.
func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ExtractionError is returned when text cannot be recovered from a file.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingError is returned by the embedding gateway on provider failure.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding error: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// VectorStoreError is returned by the vector store gateway. Op names the failed operation.
type VectorStoreError struct {
	Op  string
	Err error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}

func (e *VectorStoreError) Unwrap() error {
	return e.Err
}

// OrphanedVectorsError is returned when vectors were upserted but the document record
// could not be persisted. VectorIDs lists the vectors left without a document; they need
// an external cleanup.
type OrphanedVectorsError struct {
	VectorIDs []string
	Err       error
}

func (e *OrphanedVectorsError) Error() string {
	return fmt.Sprintf("document record not persisted, %d vectors orphaned (%s): %v",
		len(e.VectorIDs), strings.Join(e.VectorIDs, ","), e.Err)
}

func (e *OrphanedVectorsError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
