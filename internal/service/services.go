package service

import (
	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/store"
)

// Services groups the server-side services handed to the HTTP layer.
type Services struct {
	AuthService    AuthService
	VaultService   VaultService
	AppInfoService AppInfoService
}

// NewServices wires the server service layer over the storage layer.
func NewServices(storages *store.Storages, cfg *config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:    NewAuthService(storages.UserRepository, cfg.App, logger),
		VaultService:   NewVaultService(storages.VaultLedger, storages.UserRepository, cfg.App.Version, logger),
		AppInfoService: appInfo,
	}, nil
}
