package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/pkg/metrics"
)

// NewRouter wires the admin routes:
//
//   - GET /healthz          - liveness probe
//   - GET /metrics          - Prometheus registry scrape
//   - GET /api/v1/stats     - datagram server counter snapshot
//   - GET /api/v1/accounts  - read-only account listing
func NewRouter(stats StatsProvider, accounts AccountLister) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", newHealthHandler().Liveness)
	r.Get("/metrics", handleMetrics)

	// Root redirect to the liveness probe for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/healthz", http.StatusTemporaryRedirect)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", (&statsHandler{src: stats}).Snapshot)
		r.Get("/accounts", (&accountsHandler{src: accounts}).List)
	})

	return r
}

// handleMetrics serves the Prometheus registry. The registry is resolved
// per request so the route behaves correctly whether or not metrics were
// enabled at startup.
func handleMetrics(w http.ResponseWriter, r *http.Request) {
	reg := metrics.GetRegistry()
	if reg == nil {
		writeJSON(w, http.StatusNotFound, errorResponse("metrics collection disabled"))
		return
	}
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// isQuietPath reports whether the path belongs to a probe or scrape
// endpoint whose completion should be logged at DEBUG to reduce noise.
func isQuietPath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

// requestLogger logs requests through the internal logger instead of
// chi's default stdlib logger, so admin traffic shares the process-wide
// format and level handling.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, logger.Duration(start),
		}

		if isQuietPath(r.URL.Path) {
			logger.Debug("admin request completed", logArgs...)
		} else {
			logger.Info("admin request completed", logArgs...)
		}
	})
}
