// Package handler internal/infrastructure/handler/conversion_handler.go
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
	loc     *time.Location
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, loc *time.Location, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
		loc:     loc,
	}
}

// Convert handles GET /api/convert?amount=&from=&to=[&date=]
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	req, err := h.parseRequest(r)
	if err != nil {
		h.logger.Warn("Invalid conversion request", map[string]interface{}{
			"request_id": requestID,
			"query":      r.URL.RawQuery,
			"error":      err.Error(),
		})
		writeError(w, h.logger, err, requestID)
		return
	}

	conversion, err := h.service.Convert(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newConversionResponse(conversion))
}

func (h *ConversionHandler) parseRequest(r *http.Request) (entity.ConversionRequest, error) {
	query := r.URL.Query()
	var req entity.ConversionRequest

	rawAmount := query.Get("amount")
	if rawAmount == "" {
		return req, fmt.Errorf("%w: the 'amount' query parameter is required", apperrors.ErrInvalidAmount)
	}
	if strings.ContainsAny(rawAmount, "eE") {
		return req, fmt.Errorf("%w: exponent notation is not accepted", apperrors.ErrInvalidAmount)
	}
	// the widget may send either "1234.5" or the comma-decimal form
	amount, err := entity.ParseRateValue(rawAmount)
	if err != nil {
		return req, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	req.Amount = amount

	if req.From, err = entity.ParseCurrencyCode(query.Get("from")); err != nil {
		return req, fmt.Errorf("%w: %v", apperrors.ErrInvalidCurrency, err)
	}
	if req.To, err = entity.ParseCurrencyCode(query.Get("to")); err != nil {
		return req, fmt.Errorf("%w: %v", apperrors.ErrInvalidCurrency, err)
	}

	if raw := query.Get("date"); raw != "" {
		if req.Date, err = entity.ParseDate(raw, h.loc); err != nil {
			return req, fmt.Errorf("%w: %v", apperrors.ErrInvalidDate, err)
		}
	}

	return req, nil
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{"GET /api/convert"},
	})
}
