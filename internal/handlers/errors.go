package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// statusFor maps an error to its HTTP status and a message safe to show the caller.
func statusFor(err error) (int, string) {
	var validationErr *service.ValidationError
	var unsupportedErr *domain.UnsupportedFormatError
	var genErr *domain.AnswerGenerationError

	switch {
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, "Authentication required"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation error: " + validationErr.Error()
	case errors.As(err, &unsupportedErr):
		return http.StatusBadRequest, unsupportedErr.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, domain.ErrEmptyCorpus):
		return http.StatusConflict, "No documents available for your team. Upload files first."
	case errors.As(err, &genErr):
		if genErr.Retryable {
			return http.StatusBadGateway, "The answer service is temporarily unavailable. Try again."
		}
		return http.StatusBadGateway, "The answer service failed to respond"
	case errors.Is(err, domain.ErrProviderMismatch):
		return http.StatusInternalServerError, "Index was built with a different embedding provider"
	case errors.Is(err, domain.ErrConfig):
		return http.StatusInternalServerError, "Server configuration error"
	case errors.Is(err, domain.ErrIO):
		return http.StatusInternalServerError, "Storage error"
	default:
		return http.StatusInternalServerError, ""
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	if msg == "" {
		msg = defaultMsg
	}
	writeError(w, status, msg)
}
