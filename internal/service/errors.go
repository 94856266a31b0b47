package service

import (
	"errors"

	"knowledge-search/internal/domain"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = domain.ErrInvalidInput
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = domain.ErrNotFound
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ErrorKind classifies an error returned by the service layer.
type ErrorKind int

const (
	// KindInternal is any error not classified below.
	KindInternal ErrorKind = iota
	// KindInvalidInput covers validation errors and unsupported file types.
	KindInvalidInput
	// KindUnauthorized means no owner identity was established.
	KindUnauthorized
	// KindNotFound means the resource does not exist for the caller.
	KindNotFound
	// KindUnprocessable means the file was accepted but its text could not be recovered.
	KindUnprocessable
	// KindUpstream covers embedding and vector store failures.
	KindUpstream
)

// Classify returns the kind of err, looking through wrapping.
func Classify(err error) ErrorKind {
	var (
		extErr *domain.ExtractionError
		embErr *domain.EmbeddingError
		vsErr  *domain.VectorStoreError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, domain.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.As(err, &extErr):
		return KindUnprocessable
	case errors.As(err, &embErr), errors.As(err, &vsErr), errors.Is(err, ErrExternalService):
		return KindUpstream
	default:
		return KindInternal
	}
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	return domain.WrapError(err, msg)
}
