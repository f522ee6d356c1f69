package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// writeError maps a service error onto a status code and a client-safe message
func writeError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRange),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidCurrency):
		sendErrorResponse(w, log, "Invalid request", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, apperrors.ErrRateUnavailable):
		sendErrorResponse(w, log, "Exchange rate unavailable", err.Error(), http.StatusUnprocessableEntity, requestID)
	case errors.Is(err, apperrors.ErrDataUnavailable):
		sendErrorResponse(w, log, "Data unavailable",
			"The exchange rate service could not be reached. Please try again later.",
			http.StatusBadGateway, requestID)
	default:
		log.Error("Unexpected handler error", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}

func writeJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
