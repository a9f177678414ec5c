package http

import (
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/metrics"
	"github.com/ykarpov/go-vault-sync/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  *metrics.Metrics

	logger *logger.Logger
}

func NewHandler(services *service.Services, metrics *metrics.Metrics, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		metrics:  metrics,
		logger:   logger,
	}
}
