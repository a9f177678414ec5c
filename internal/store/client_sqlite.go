package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
)

// NewConnectSQLite opens (and creates if necessary) the client's local
// SQLite database and bootstraps its schema. The path ":memory:" yields a
// throwaway in-memory database, used by tests.
func NewConnectSQLite(ctx context.Context, cfg config.ClientLocal, log *logger.Logger) (*DB, error) {
	if cfg.Path != ":memory:" {
		if err := createLocalDBFileIfNotExists(cfg.Path); err != nil {
			log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to local database successfully")

	db := &DB{
		DB:     conn,
		logger: log,
	}
	if err = db.bootstrapClientSchema(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) bootstrapClientSchema(ctx context.Context) error {
	for _, stmt := range []string{createVaultStateTable, createSessionTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error bootstrapping local schema: %w", err)
		}
	}
	return nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if err = os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("error creating DB directory: %w", err)
			}
		}
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
