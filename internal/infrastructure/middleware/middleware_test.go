// internal/infrastructure/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r.Context())))
	}))

	t.Run("generates an ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chart", nil))

		requestID := w.Header().Get(RequestIDHeader)
		assert.Len(t, requestID, 36)
		assert.Equal(t, requestID, w.Body.String())
	})

	t.Run("keeps the caller's ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		req.Header.Set(RequestIDHeader, "widget-42")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "widget-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "widget-42", w.Body.String())
	})

	for name, supplied := range map[string]string{
		"replaces an oversized ID":    strings.Repeat("a", 129),
		"replaces a log-forging ID":   "abc\n{\"level\":\"ERROR\"}",
		"replaces an ID with markup":  "<script>alert(1)</script>",
		"replaces an ID with spacing": "req 1",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
			req.Header.Set(RequestIDHeader, supplied)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			requestID := w.Header().Get(RequestIDHeader)
			assert.NotEqual(t, supplied, requestID)
			assert.Len(t, requestID, 36)
			assert.Equal(t, requestID, w.Body.String())
		})
	}

	t.Run("keeps an ID at the length limit", func(t *testing.T) {
		supplied := strings.Repeat("a", 128)
		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		req.Header.Set(RequestIDHeader, supplied)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, supplied, w.Header().Get(RequestIDHeader))
	})
}

func TestGetRequestID(t *testing.T) {
	assert.Equal(t, "abc", GetRequestID(WithRequestID(context.Background(), "abc")))
	assert.Equal(t, "unknown", GetRequestID(context.Background()))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewJSONLogger(&buf, logger.DebugLevel)

			handler := RequestIDMiddleware(LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/rates?date=01-07-2024", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])

			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, "/api/rates", entry["path"])
			assert.Equal(t, "date=01-07-2024", entry["query"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, float64(4), entry["content_length"])
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.ErrorLevel)

	handler := RecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/convert", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"status":500`)
	assert.Contains(t, buf.String(), "Handler panicked")
}

func TestNewCORS(t *testing.T) {
	handler := NewCORS([]string{"http://dashboard.local"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/chart", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "http://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/chart", nil)
	req.Header.Set("Origin", "http://elsewhere.local")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
