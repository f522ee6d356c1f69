package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the dashboard widgets. An empty origin list allows any
// origin.
func NewCORS(allowedOrigins []string) *cors.Cors {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders:   []string{"Content-Type", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
