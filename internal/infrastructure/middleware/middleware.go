// internal/infrastructure/middleware/middleware.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"

	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestIDMiddleware tags every request with an ID, reusing the caller's when it is a plausible
// token and generating a fresh one otherwise
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// validRequestID accepts short tokens made of letters, digits and ._:-
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

// WithRequestID returns a copy of ctx carrying requestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// LoggingMiddleware writes one entry per request once the response is sent. Server errors are
// logged at ERROR, client errors at WARN.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newResponseWrapper(w)

			next.ServeHTTP(wrapper, r)

			fields := map[string]interface{}{
				"request_id":     GetRequestID(r.Context()),
				"method":         r.Method,
				"path":           r.URL.Path,
				"query":          r.URL.RawQuery,
				"remote_addr":    r.RemoteAddr,
				"status":         wrapper.statusCode,
				"duration_ms":    time.Since(start).Milliseconds(),
				"content_length": wrapper.contentLength,
			}
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				log.Error("Request failed", fields)
			case wrapper.statusCode >= http.StatusBadRequest:
				log.Warn("Request rejected", fields)
			default:
				log.Info("Request handled", fields)
			}
		})
	}
}

// RecoveryMiddleware turns a handler panic into a 500 instead of a dropped connection
func RecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("Handler panicked", map[string]interface{}{
						"request_id": GetRequestID(r.Context()),
						"path":       r.URL.Path,
						"panic":      fmt.Sprint(rec),
					})
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprintf(w, `{"error":"Internal Server Error","status":500,"request_id":%q}`, GetRequestID(r.Context()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// responseWrapper captures the status code and body size
type responseWrapper struct {
	http.ResponseWriter
	statusCode    int
	contentLength int64
	wroteHeader   bool
}

func newResponseWrapper(w http.ResponseWriter) *responseWrapper {
	return &responseWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWrapper) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.contentLength += int64(n)
	return n, err
}

// Flush keeps streaming responses working behind the wrapper
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
