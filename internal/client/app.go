package client

import (
	"context"
	"fmt"
	"os"

	"github.com/ykarpov/go-vault-sync/internal/adapter"
	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/service"
	"github.com/ykarpov/go-vault-sync/internal/store"
	"github.com/ykarpov/go-vault-sync/internal/validators"
	"github.com/ykarpov/go-vault-sync/models"
)

// App is the client application: services wired over a local SQLite store
// and an HTTP adapter, exposed through a cobra command tree.
type App struct {
	services *service.ClientServices
	storages *store.ClientStorages
	cfg      *config.ClientConfig

	credentialsValidator validators.Validator
	rowValidator         validators.Validator

	buildInfo models.AppBuildInfo
	logger    *logger.Logger

	// out is where command output goes. Overridable in tests.
	out *os.File
}

// NewApp wires the whole client stack from configuration.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, logger)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	services, err := service.NewClientServices(serverAdapter, storages, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create client services: %w", err)
	}

	return &App{
		services:             services,
		storages:             storages,
		cfg:                  cfg,
		credentialsValidator: validators.NewCredentialsValidator(),
		rowValidator:         validators.NewRowInputValidator(),
		buildInfo:            buildInfo,
		logger:               logger,
		out:                  os.Stdout,
	}, nil
}

// Run implements [Client]: it executes the command tree against the
// process arguments.
func (a *App) Run(ctx context.Context) error {
	return a.rootCommand().ExecuteContext(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
