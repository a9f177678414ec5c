package store

import (
	"context"
	"fmt"

	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
)

// Storages groups all server-side repositories into a single value passed
// to the service layer.
type Storages struct {
	UserRepository UserRepository
	VaultLedger    ledger.Ledger
}

// NewStorages initialises the server storage layer: it connects to
// PostgreSQL, applies pending schema migrations, and wires the
// repositories.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		UserRepository: NewUserRepository(db, logger),
		VaultLedger:    NewVaultRepository(db, logger),
	}, nil
}
