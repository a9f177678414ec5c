package service

import (
	"fmt"

	"github.com/ykarpov/go-vault-sync/internal/adapter"
	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/crypto"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/merge"
	"github.com/ykarpov/go-vault-sync/internal/store"
)

// ClientServices groups the client service layer handed to the CLI.
type ClientServices struct {
	SessionService ClientSessionService
	VaultService   ClientVaultService
	SyncService    SyncCoordinator
	SyncJob        ClientSyncJob
}

// NewClientServices wires the client service layer: the server adapter,
// the snapshot cipher, the merge engine and pruner over the default table
// registry, the sync coordinator, the local vault editor, the session
// service (which installs the derived key into the other two), and the
// background sync job.
func NewClientServices(
	serverAdapter adapter.ServerAdapter,
	storages *store.ClientStorages,
	cfg *config.ClientConfig,
	logger *logger.Logger,
) (*ClientServices, error) {
	registry := merge.DefaultRegistry()

	engine, err := merge.NewEngine(registry)
	if err != nil {
		return nil, fmt.Errorf("building merge engine: %w", err)
	}
	pruner, err := merge.NewPruner(registry)
	if err != nil {
		return nil, fmt.Errorf("building trash pruner: %w", err)
	}

	cipher := crypto.NewVaultCipherService()

	coordinator := NewSyncCoordinator(
		serverAdapter,
		cipher,
		engine,
		pruner,
		cfg.Sync.Retention,
		cfg.Sync.MaxMergeRetries,
		logger,
	)
	vaultService := NewClientVaultService(cipher, storages.StateRepository, registry, logger)
	sessionService := NewClientSessionService(
		serverAdapter,
		cipher,
		storages.StateRepository,
		cfg.App.AuthSalt,
		logger,
		coordinator,
		vaultService,
	)

	return &ClientServices{
		SessionService: sessionService,
		VaultService:   vaultService,
		SyncService:    coordinator,
		SyncJob:        NewClientSyncJob(coordinator, storages.StateRepository, logger),
	}, nil
}
