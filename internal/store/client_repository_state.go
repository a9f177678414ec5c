package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/models"
)

// localStateRepository is the SQLite-backed implementation of
// [LocalStateRepository].
type localStateRepository struct {
	logger *logger.Logger
	db     *DB

	now func() time.Time
}

// NewLocalStateRepository constructs a [LocalStateRepository] backed by
// the provided local database connection and logger.
func NewLocalStateRepository(db *DB, logger *logger.Logger) LocalStateRepository {
	logger.Debug().Msg("creating local state repository")
	return &localStateRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// GetState implements [LocalStateRepository].
func (r *localStateRepository) GetState(ctx context.Context) (models.LocalVaultState, error) {
	var state models.LocalVaultState
	row := r.db.QueryRowContext(ctx, getVaultState)
	err := row.Scan(
		&state.EncryptedBlob,
		&state.Sync.LocalRevision,
		&state.Sync.Dirty,
		&state.Sync.MutationSequence,
		&state.Login,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalVaultState{}, ErrLocalStateNotFound
		}
		return models.LocalVaultState{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return state, nil
}

// SaveState implements [LocalStateRepository].
func (r *localStateRepository) SaveState(ctx context.Context, state models.LocalVaultState) error {
	_, err := r.db.ExecContext(ctx, upsertVaultState,
		state.EncryptedBlob,
		state.Sync.LocalRevision,
		state.Sync.Dirty,
		state.Sync.MutationSequence,
		state.Login,
		r.now(),
	)
	if err != nil {
		r.logger.Err(err).Str("func", "*localStateRepository.SaveState").Msg("error saving local state")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteState implements [LocalStateRepository].
func (r *localStateRepository) DeleteState(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteVaultState); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// GetSession implements [LocalStateRepository].
func (r *localStateRepository) GetSession(ctx context.Context) (models.Session, error) {
	var session models.Session
	row := r.db.QueryRowContext(ctx, getSession)
	if err := row.Scan(&session.UserID, &session.Login, &session.Token, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrLocalSessionNotFound
		}
		return models.Session{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return session, nil
}

// SaveSession implements [LocalStateRepository].
func (r *localStateRepository) SaveSession(ctx context.Context, session models.Session) error {
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	_, err := r.db.ExecContext(ctx, upsertSession, session.UserID, session.Login, session.Token, createdAt)
	if err != nil {
		r.logger.Err(err).Str("func", "*localStateRepository.SaveSession").Msg("error saving session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteSession implements [LocalStateRepository].
func (r *localStateRepository) DeleteSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteSession); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
