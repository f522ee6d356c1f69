// internal/infrastructure/handler/chart_handler.go
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// DefaultChartWait bounds how long a ?wait=true request holds on to a running cycle
const DefaultChartWait = 2 * time.Minute

// ChartHandler serves the chart slot
type ChartHandler struct {
	charts       *service.ChartService
	logger       logger.Logger
	defaultRange entity.Granularity
	waitTimeout  time.Duration
}

// NewChartHandler creates a chart handler. defaultRange is used until a client picks one.
func NewChartHandler(charts *service.ChartService, defaultRange entity.Granularity, log logger.Logger) *ChartHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if defaultRange == "" {
		defaultRange = entity.DefaultGranularity
	}

	return &ChartHandler{
		charts:       charts,
		logger:       log,
		defaultRange: defaultRange,
		waitTimeout:  DefaultChartWait,
	}
}

// SetWaitTimeout overrides DefaultChartWait
func (h *ChartHandler) SetWaitTimeout(d time.Duration) {
	if d > 0 {
		h.waitTimeout = d
	}
}

// GetChart returns the chart state. A cycle is started first when nothing has been built yet or
// the requested range differs from the current one.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	state := h.charts.State()
	g, err := h.rangeParam(query.Get("range"), state)
	if err != nil {
		h.logger.Warn("Invalid chart range", map[string]interface{}{
			"request_id": requestID,
			"range":      query.Get("range"),
		})
		writeError(w, h.logger, err, requestID)
		return
	}

	if state.Generation == 0 || g != state.Granularity {
		gen := h.charts.Refresh(g)
		h.logger.Debug("Chart cycle requested by client", map[string]interface{}{
			"request_id": requestID,
			"generation": gen,
			"range":      g,
		})
		state = h.charts.State()
	}

	if wait, _ := strconv.ParseBool(query.Get("wait")); wait && state.Loading {
		ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
		defer cancel()

		state, err = h.charts.Wait(ctx, state.Generation)
		if err != nil {
			h.logger.Warn("Gave up waiting for chart cycle", map[string]interface{}{
				"request_id": requestID,
				"generation": state.Generation,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Chart still loading",
				"The chart is still being built. Poll again without wait=true.",
				http.StatusGatewayTimeout, requestID)
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, state)
}

// RefreshChart starts a new cycle and answers without waiting for it
func (h *ChartHandler) RefreshChart(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	g, err := h.rangeParam(r.URL.Query().Get("range"), h.charts.State())
	if err != nil {
		writeError(w, h.logger, err, requestID)
		return
	}

	gen := h.charts.Refresh(g)
	h.logger.Info("Chart refresh started", map[string]interface{}{
		"request_id": requestID,
		"generation": gen,
		"range":      g,
	})

	writeJSON(w, h.logger, http.StatusAccepted, RefreshResponse{Generation: gen, Granularity: g})
}

// rangeParam falls back to the current range, then to the default one
func (h *ChartHandler) rangeParam(raw string, state service.ChartState) (entity.Granularity, error) {
	if raw == "" {
		if state.Generation > 0 {
			return state.Granularity, nil
		}
		return h.defaultRange, nil
	}
	g, err := entity.ParseGranularity(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidRange, err)
	}
	return g, nil
}

// RegisterRoutes registers the chart handler routes
func (h *ChartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chart", h.GetChart).Methods(http.MethodGet)
	router.HandleFunc("/chart/refresh", h.RefreshChart).Methods(http.MethodPost)

	h.logger.Info("Chart routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/chart",
			"POST /api/chart/refresh",
		},
	})
}
