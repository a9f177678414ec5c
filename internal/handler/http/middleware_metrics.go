package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// withMetrics records every finished request into the Prometheus
// collectors. The route label uses chi's matched pattern, not the raw
// path, so user IDs and other variables do not explode the cardinality.
func (h *Handler) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		mw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(mw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		h.metrics.RequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(mw.status)).
			Inc()
		h.metrics.RequestDuration.
			WithLabelValues(route).
			Observe(time.Since(start).Seconds())
	})
}
