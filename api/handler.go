// Package api exposes herald over HTTP.
//
// Inbound producer requests (anything POSTed outside the admin routes) are
// handed to the engine; success returns the extracted item as JSON and any
// failure a bare 500. The admin routes read dispatch records and manage
// correlation entries.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/xraph/herald"
	"github.com/xraph/herald/store"
)

// Handler is the root HTTP handler.
type Handler struct {
	herald *herald.Herald
	store  store.Store
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler creates a handler dispatching through h and reading s.
func NewHandler(h *herald.Herald, s store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	api := &Handler{
		herald: h,
		store:  s,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	api.registerRoutes()
	return api
}

func (h *Handler) registerRoutes() {
	// Producers
	h.mux.HandleFunc("POST /", h.inbound)

	// Records
	h.mux.HandleFunc("GET /records", h.listRecords)
	h.mux.HandleFunc("GET /records/{id}", h.getRecord)

	// Correlations
	h.mux.HandleFunc("GET /correlations/{entityID}", h.getCorrelation)
	h.mux.HandleFunc("PUT /correlations/{entityID}", h.putCorrelation)
	h.mux.HandleFunc("DELETE /correlations/{entityID}", h.deleteCorrelation)

	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("GET /metrics", h.metrics)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(next))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt returns a query parameter as a non-negative int or a default value.
func queryInt(r *http.Request, key string, defaultVal int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
