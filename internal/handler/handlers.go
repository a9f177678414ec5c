package handler

import (
	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/handler/http"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/metrics"
	"github.com/ykarpov/go-vault-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, m *metrics.Metrics, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, m, logger),
	}, nil
}
