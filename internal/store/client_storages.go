package store

import (
	"context"
	"fmt"

	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
)

// ClientStorages groups the client-side repositories into a single value
// passed to the client service layer.
type ClientStorages struct {
	// StateRepository is the SQLite-backed store for the encrypted vault
	// blob, sync bookkeeping, and auth session.
	StateRepository LocalStateRepository
}

// NewClientStorages initialises the client storage layer: it opens the
// local SQLite database at cfg.Local.Path (creating the file and schema
// on first run) and wires the state repository.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating client storages...")

	db, err := NewConnectSQLite(ctx, cfg.Local, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	return &ClientStorages{
		StateRepository: NewLocalStateRepository(db, logger),
	}, nil
}
