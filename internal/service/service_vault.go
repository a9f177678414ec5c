package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/store"
	"github.com/ykarpov/go-vault-sync/models"
)

// vaultService is the concrete implementation of VaultService. It is a
// thin orchestration layer over the revision ledger: the ledger's CAS is
// the only ordering authority, this service merely shapes requests and
// responses around it.
type vaultService struct {
	vaultLedger    ledger.Ledger
	userRepository store.UserRepository
	appVersion     string

	logger *logger.Logger
}

// NewVaultService constructs a VaultService over the given ledger and
// user repository.
func NewVaultService(vaultLedger ledger.Ledger, userRepository store.UserRepository, appVersion string, logger *logger.Logger) VaultService {
	return &vaultService{
		vaultLedger:    vaultLedger,
		userRepository: userRepository,
		appVersion:     appVersion,
		logger:         logger,
	}
}

// Status implements [VaultService]. A user without a saved vault reports
// revision zero, not an error.
func (s *vaultService) Status(ctx context.Context, userID int64) (models.StatusResponse, error) {
	log := logger.FromContext(ctx)

	var revision int64
	record, err := s.vaultLedger.GetLatest(ctx, userID)
	switch {
	case err == nil:
		revision = record.Revision
	case errors.Is(err, ledger.ErrVaultNotFound):
		revision = 0
	default:
		log.Err(err).Int64("user_id", userID).Msg("error getting vault revision")
		return models.StatusResponse{}, fmt.Errorf("error getting vault revision: %w", err)
	}

	response := models.StatusResponse{
		ClientVersionSupported: true,
		ServerVersion:          s.appVersion,
		VaultRevision:          revision,
	}

	// The salt is public key-derivation input; serving it here saves the
	// client a round trip before login.
	if user, err := s.userRepository.FindUserByID(ctx, userID); err == nil {
		response.SRPSalt = user.SRPSalt
	}

	return response, nil
}

// Download implements [VaultService].
func (s *vaultService) Download(ctx context.Context, userID int64) (models.VaultResponse, error) {
	log := logger.FromContext(ctx)

	record, err := s.vaultLedger.GetLatest(ctx, userID)
	if err != nil {
		if !errors.Is(err, ledger.ErrVaultNotFound) {
			log.Err(err).Int64("user_id", userID).Msg("error downloading vault")
		}
		return models.VaultResponse{}, err
	}

	return models.VaultResponse{Revision: record.Revision, Blob: record.Blob}, nil
}

// Save implements [VaultService]. The verdict, including a CAS rejection,
// is a normal response, not an error: the handler layer decides the HTTP
// status from Status.
func (s *vaultService) Save(ctx context.Context, userID int64, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
	log := logger.FromContext(ctx)

	if len(req.Blob) == 0 || req.CurrentRevisionNumber < 0 {
		return models.SaveVaultResponse{}, ErrInvalidDataProvided
	}

	result, err := s.vaultLedger.TrySave(ctx, userID, req.CurrentRevisionNumber, req.Blob)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("error saving vault")
		return models.SaveVaultResponse{}, fmt.Errorf("error saving vault: %w", err)
	}

	return models.SaveVaultResponse{
		Status:            result.Status,
		NewRevisionNumber: result.NewRevision,
		RecoveryGap:       result.RecoveryGap,
	}, nil
}

// History implements [VaultService].
func (s *vaultService) History(ctx context.Context, userID int64, limit int) (models.VaultHistoryResponse, error) {
	log := logger.FromContext(ctx)

	entries, err := s.vaultLedger.History(ctx, userID, limit)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("error listing vault history")
		return models.VaultHistoryResponse{}, fmt.Errorf("error listing vault history: %w", err)
	}

	return models.VaultHistoryResponse{Entries: entries, Length: len(entries)}, nil
}
