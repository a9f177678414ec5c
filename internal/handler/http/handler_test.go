package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/metrics"
	"github.com/ykarpov/go-vault-sync/internal/service"
)

// ---- Helpers ----

func newTestHandler(services *service.Services) *Handler {
	return &Handler{
		services: services,
		metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
		logger:   logger.Nop(),
	}
}

// injectNopLogger puts a nop logger into the request context, standing in
// for the trace-ID middleware.
func injectNopLogger(r *http.Request) *http.Request {
	nop := logger.Nop()
	ctx := nop.Logger.WithContext(r.Context())
	return r.WithContext(ctx)
}
