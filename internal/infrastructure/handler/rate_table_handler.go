// internal/infrastructure/handler/rate_table_handler.go
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RateTableHandler serves the single-date rate table
type RateTableHandler struct {
	service *service.RateTableService
	logger  logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewRateTableHandler creates a rate table handler. Dates are read as calendar dates in loc.
func NewRateTableHandler(service *service.RateTableService, loc *time.Location, log logger.Logger) *RateTableHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &RateTableHandler{
		service: service,
		logger:  log,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock sets the clock used when no date is requested
func (h *RateTableHandler) SetClock(now func() time.Time) {
	if now != nil {
		h.now = now
	}
}

// GetRates handles GET /api/rates?date=DD-MM-YYYY
func (h *RateTableHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	date := entity.CalendarDate(h.now().In(h.loc))
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := entity.ParseDate(raw, h.loc)
		if err != nil {
			h.logger.Warn("Invalid date format", map[string]interface{}{
				"request_id": requestID,
				"date":       raw,
			})
			writeError(w, h.logger, fmt.Errorf("%w: %v", apperrors.ErrInvalidDate, err), requestID)
			return
		}
		date = parsed
	}

	rows, err := h.service.Lookup(r.Context(), date)
	if err != nil {
		writeError(w, h.logger, err, requestID)
		return
	}

	h.logger.Debug("Rate table served", map[string]interface{}{
		"request_id": requestID,
		"date":       entity.FormatDate(date),
		"rows":       len(rows),
	})

	writeJSON(w, h.logger, http.StatusOK, RateTableResponse{
		Date:  entity.FormatDate(date),
		Base:  entity.BaseCurrency,
		Rates: rows,
	})
}

// RegisterRoutes registers the rate table routes
func (h *RateTableHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)

	h.logger.Info("Rate table routes registered", map[string]interface{}{
		"routes": []string{"GET /api/rates"},
	})
}
