package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/models"
)

// vaultRepository is the PostgreSQL-backed implementation of
// [ledger.Ledger]. The compare-and-swap in TrySave runs inside one
// transaction with the vault row locked FOR UPDATE, so concurrent saves
// for the same user serialize and exactly one of two racing writers wins.
type vaultRepository struct {
	logger *logger.Logger
	db     *DB

	now func() time.Time
}

// NewVaultRepository constructs a [ledger.Ledger] backed by the provided
// database connection and logger.
func NewVaultRepository(db *DB, logger *logger.Logger) ledger.Ledger {
	logger.Debug().Msg("creating vault repository")
	return &vaultRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// GetLatest implements [ledger.Ledger].
func (r *vaultRepository) GetLatest(ctx context.Context, userID int64) (models.VaultRecord, error) {
	log := logger.FromContext(ctx)

	var record models.VaultRecord
	row := r.db.QueryRowContext(ctx, getLatestVault, userID)
	if err := row.Scan(&record.UserID, &record.Revision, &record.Blob, &record.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VaultRecord{}, ledger.ErrVaultNotFound
		}
		log.Err(err).Str("func", "*vaultRepository.GetLatest").Msg("error scanning vault")
		return models.VaultRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

// TrySave implements [ledger.Ledger]. The CAS decision and the write are
// one transaction:
//  1. lock the user's vault row and read the actual revision (zero when
//     the user has never saved);
//  2. reject with SaveStatusOutdated when actual >= claimed+1, leaving
//     stored state untouched;
//  3. otherwise upsert the blob at claimed+1 and append an audit entry,
//     flagging a recovery gap when the new revision jumps more than one
//     ahead of the actual.
func (r *vaultRepository) TrySave(ctx context.Context, userID, claimedCurrentRevision int64, blob []byte) (ledger.SaveResult, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.TrySave").Msg("error beginning transaction")
		return ledger.SaveResult{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var actual int64
	err = tx.QueryRowContext(ctx, getVaultRevisionForUpdate, userID).Scan(&actual)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).Str("func", "*vaultRepository.TrySave").Msg("error locking vault row")
		return ledger.SaveResult{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	newRevision := claimedCurrentRevision + 1
	if actual >= newRevision {
		log.Info().
			Int64("user_id", userID).
			Int64("claimed", claimedCurrentRevision).
			Int64("actual", actual).
			Msg("vault save rejected: stale revision")
		return ledger.SaveResult{Status: models.SaveStatusOutdated, NewRevision: actual}, nil
	}

	savedAt := r.now()
	if _, err = tx.ExecContext(ctx, upsertVault, userID, newRevision, blob, savedAt); err != nil {
		log.Err(err).Str("func", "*vaultRepository.TrySave").Msg("error upserting vault")
		return ledger.SaveResult{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	recoveryGap := newRevision > actual+1
	if _, err = tx.ExecContext(ctx, insertVaultHistory, userID, newRevision, int64(len(blob)), savedAt, recoveryGap); err != nil {
		log.Err(err).Str("func", "*vaultRepository.TrySave").Msg("error inserting vault history")
		return ledger.SaveResult{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*vaultRepository.TrySave").Msg("error committing transaction")
		return ledger.SaveResult{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	if recoveryGap {
		log.Warn().
			Int64("user_id", userID).
			Int64("from", actual).
			Int64("to", newRevision).
			Msg("vault saved with revision gap (rollback recovery)")
	}

	return ledger.SaveResult{
		Status:      models.SaveStatusOk,
		NewRevision: newRevision,
		RecoveryGap: recoveryGap,
	}, nil
}

// History implements [ledger.Ledger]. Entries are returned newest first;
// a non-positive limit returns the full trail.
func (r *vaultRepository) History(ctx context.Context, userID int64, limit int) ([]models.VaultHistoryEntry, error) {
	log := logger.FromContext(ctx)

	builder := sq.
		Select("revision", "blob_size", "saved_at", "recovery_gap").
		From(models.VaultHistoryEntry{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("revision DESC").
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.History").Msg("error querying vault history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.VaultHistoryEntry
	for rows.Next() {
		var entry models.VaultHistoryEntry
		if err = rows.Scan(&entry.Revision, &entry.BlobSize, &entry.SavedAt, &entry.RecoveryGap); err != nil {
			log.Err(err).Str("func", "*vaultRepository.History").Msg("error scanning vault history row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}
