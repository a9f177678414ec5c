// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ykarpov/go-vault-sync/internal/adapter"
	"github.com/ykarpov/go-vault-sync/internal/crypto"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/store"
	"github.com/ykarpov/go-vault-sync/models"
)

// clientSessionService is the concrete ClientSessionService. It owns the
// key-derivation flow around the adapter's auth calls and the persistence
// of session and vault state across the two logout variants.
type clientSessionService struct {
	adapter   adapter.ServerAdapter
	cipher    crypto.VaultCipherService
	stateRepo store.LocalStateRepository

	// keyHolders receive the derived key on login and lose it on logout.
	keyHolders []KeyHolder

	// authSalt is the fixed domain-separation salt for the auth verifier.
	// Public, but every client and the server must agree on it.
	authSalt string

	logger *logger.Logger
}

// NewClientSessionService constructs a ClientSessionService. keyHolders
// are the components that need the derived vault key (the coordinator and
// the vault editor).
func NewClientSessionService(
	serverAdapter adapter.ServerAdapter,
	cipher crypto.VaultCipherService,
	stateRepo store.LocalStateRepository,
	authSalt string,
	logger *logger.Logger,
	keyHolders ...KeyHolder,
) ClientSessionService {
	return &clientSessionService{
		adapter:    serverAdapter,
		cipher:     cipher,
		stateRepo:  stateRepo,
		keyHolders: keyHolders,
		authSalt:   authSalt,
		logger:     logger,
	}
}

// Register implements [ClientSessionService].
func (s *clientSessionService) Register(ctx context.Context, login, masterPassword string) error {
	if login == "" || masterPassword == "" {
		return ErrInvalidDataProvided
	}

	salt, err := s.cipher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	key := s.cipher.DeriveKey(masterPassword, salt)

	registered, err := s.adapter.Register(ctx, models.User{
		Login:    login,
		AuthHash: hex.EncodeToString(s.cipher.AuthHash(key, s.authSalt)),
		SRPSalt:  hex.EncodeToString(salt),
	})
	if err != nil {
		s.logger.Err(err).Str("login", login).Msg("registration on server failed")
		return fmt.Errorf("%w: %w", ErrRegisterOnServer, err)
	}

	return s.openSession(ctx, registered, key)
}

// Login implements [ClientSessionService].
func (s *clientSessionService) Login(ctx context.Context, login, masterPassword string) error {
	if login == "" || masterPassword == "" {
		return ErrInvalidDataProvided
	}

	withSalt, err := s.adapter.RequestSalt(ctx, models.User{Login: login})
	if err != nil {
		s.logger.Err(err).Str("login", login).Msg("salt request failed")
		return fmt.Errorf("%w: %w", ErrLoginOnServer, err)
	}

	salt, err := hex.DecodeString(withSalt.SRPSalt)
	if err != nil {
		return fmt.Errorf("%w: malformed salt", ErrLoginOnServer)
	}

	key := s.cipher.DeriveKey(masterPassword, salt)

	authenticated, err := s.adapter.Login(ctx, models.User{
		Login:    login,
		AuthHash: hex.EncodeToString(s.cipher.AuthHash(key, s.authSalt)),
	})
	if err != nil {
		s.logger.Err(err).Str("login", login).Msg("login on server failed")
		return fmt.Errorf("%w: %w", ErrLoginOnServer, err)
	}

	return s.openSession(ctx, authenticated, key)
}

// Resume implements [ClientSessionService].
func (s *clientSessionService) Resume(ctx context.Context) (models.Session, error) {
	session, err := s.stateRepo.GetSession(ctx)
	if err != nil {
		if errors.Is(err, store.ErrLocalSessionNotFound) {
			return models.Session{}, ErrNotAuthenticated
		}
		return models.Session{}, fmt.Errorf("loading session: %w", err)
	}

	s.adapter.SetToken(session.Token)
	return session, nil
}

// Logout implements [ClientSessionService].
//
// LogoutUserInitiated refuses on a dirty vault so unsynced edits are not
// lost, then removes both vault state and session. LogoutForced keeps the
// vault state row verbatim — blob, revision, dirty flag, mutation
// counter, login — and clears only the session token and the derived key,
// so the next login resumes exactly where the vault left off.
func (s *clientSessionService) Logout(ctx context.Context, variant LogoutVariant) error {
	defer func() {
		for _, holder := range s.keyHolders {
			holder.ClearKey()
		}
		s.adapter.SetToken("")
	}()

	if variant == LogoutUserInitiated {
		state, err := s.stateRepo.GetState(ctx)
		if err != nil && !errors.Is(err, store.ErrLocalStateNotFound) {
			return fmt.Errorf("loading state for logout: %w", err)
		}
		if err == nil && state.Sync.Dirty {
			s.logger.Warn().Str("login", state.Login).Msg("logout refused: vault has unsynced edits")
			return ErrDirtyVault
		}

		if err = s.stateRepo.DeleteState(ctx); err != nil {
			return fmt.Errorf("deleting vault state: %w", err)
		}
	}

	if err := s.stateRepo.DeleteSession(ctx); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	s.logger.Info().Msg("logged out")
	return nil
}

// openSession persists the server-issued token and installs the derived
// key into every key holder.
func (s *clientSessionService) openSession(ctx context.Context, user models.User, key []byte) error {
	session := models.Session{
		UserID: user.UserID,
		Login:  user.Login,
		Token:  s.adapter.Token(),
	}
	if err := s.stateRepo.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	for _, holder := range s.keyHolders {
		holder.SetKey(key)
	}
	s.logger.Info().Str("login", user.Login).Msg("session opened")
	return nil
}
