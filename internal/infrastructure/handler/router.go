package handler

import (
	"net/http"

	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// Handlers groups the endpoint handlers mounted under /api
type Handlers struct {
	Chart      *ChartHandler
	RateTable  *RateTableHandler
	Conversion *ConversionHandler
}

// NewRouter wires the middleware chain and every route. CORS wraps the router so preflight
// requests are answered before route matching.
func NewRouter(h Handlers, allowedOrigins []string, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.RecoveryMiddleware(log),
	)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, HealthResponse{Status: "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if h.Chart != nil {
		h.Chart.RegisterRoutes(api)
	}
	if h.RateTable != nil {
		h.RateTable.RegisterRoutes(api)
	}
	if h.Conversion != nil {
		h.Conversion.RegisterRoutes(api)
	}

	router.NotFoundHandler = middleware.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendErrorResponse(w, log, "Not found", "No route matches "+r.URL.Path,
			http.StatusNotFound, middleware.GetRequestID(r.Context()))
	}))

	return middleware.NewCORS(allowedOrigins).Handler(router)
}
