package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/params", h.params)
		r.Get("/api/version", h.getServerVersion)
	})

	// routes behind JWT authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/auth/status", h.status)
		r.Get("/api/vault", h.downloadVault)
		r.Post("/api/vault", h.saveVault)
		r.Get("/api/vault/history", h.vaultHistory)
	})

	router.Handle("/metrics", promhttp.Handler())

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
