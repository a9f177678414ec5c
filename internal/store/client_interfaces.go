package store

import (
	"context"

	"github.com/ykarpov/go-vault-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalStateRepository persists the client's vault state and auth session
// between runs. Exactly one state row and one session row exist per local
// database file.
type LocalStateRepository interface {
	// GetState returns the persisted vault state, or
	// [ErrLocalStateNotFound] when the client has never written one.
	GetState(ctx context.Context) (models.LocalVaultState, error)

	// SaveState replaces the persisted vault state.
	SaveState(ctx context.Context, state models.LocalVaultState) error

	// DeleteState removes the persisted vault state. Deleting a missing
	// state is not an error.
	DeleteState(ctx context.Context) error

	// GetSession returns the stored auth session, or
	// [ErrLocalSessionNotFound] when none is stored.
	GetSession(ctx context.Context) (models.Session, error)

	// SaveSession replaces the stored auth session.
	SaveSession(ctx context.Context, session models.Session) error

	// DeleteSession removes the stored auth session. Deleting a missing
	// session is not an error.
	DeleteSession(ctx context.Context) error
}
