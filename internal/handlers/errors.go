package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/domain"
	"knowledge-search/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON body with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
// Internal failures get defaultMsg so details do not leak to the client.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	switch service.Classify(err) {
	case service.KindInvalidInput:
		logger.WarnContext(ctx, "invalid request", "error", err)
		var unsupported *domain.UnsupportedFileTypeError
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &unsupported):
			writeError(w, http.StatusBadRequest, unsupported.Error())
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Error())
		default:
			writeError(w, http.StatusBadRequest, "Invalid input")
		}
	case service.KindUnauthorized:
		logger.WarnContext(ctx, "unauthorized request", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, "Resource not found")
	case service.KindUnprocessable:
		logger.WarnContext(ctx, "unprocessable document", "error", err)
		var extractErr *domain.ExtractionError
		if errors.As(err, &extractErr) {
			writeError(w, http.StatusUnprocessableEntity, extractErr.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Unprocessable document")
	case service.KindUpstream:
		logger.ErrorContext(ctx, "upstream service error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
