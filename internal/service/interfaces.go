package service

import (
	"context"

	"github.com/ykarpov/go-vault-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService handles user registration, credential verification, and JWT
// token lifecycle on the server.
type AuthService interface {
	// RegisterUser creates a new account. The AuthHash arrives already
	// derived on the client; the server never sees a master password.
	RegisterUser(ctx context.Context, user models.User) (models.User, error)

	// Login verifies the supplied auth hash against the stored one.
	Login(ctx context.Context, user models.User) (models.User, error)

	// Params returns the public key-derivation parameters (the stored SRP
	// salt) for a login, so a client can derive its keys before
	// authenticating.
	Params(ctx context.Context, login string) (models.User, error)

	// CreateToken issues a signed JWT for the user.
	CreateToken(ctx context.Context, user models.User) (models.Token, error)

	// ParseToken validates a raw JWT string and extracts the user ID.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// VaultService is the server-side face of the revision ledger: status
// probes, whole-blob downloads, compare-and-swap saves, and the audit
// trail.
type VaultService interface {
	// Status reports the server version and the user's current vault
	// revision (zero when no vault exists), plus the stored SRP salt.
	Status(ctx context.Context, userID int64) (models.StatusResponse, error)

	// Download returns the current authoritative blob and revision.
	// Returns ledger.ErrVaultNotFound when the user has never saved.
	Download(ctx context.Context, userID int64) (models.VaultResponse, error)

	// Save runs the compare-and-swap. It never partial-writes: either the
	// blob is stored at claimed+1 or stored state is untouched and the
	// response carries SaveStatusOutdated with the actual revision.
	Save(ctx context.Context, userID int64, req models.SaveVaultRequest) (models.SaveVaultResponse, error)

	// History lists the user's save audit entries, newest first.
	History(ctx context.Context, userID int64, limit int) (models.VaultHistoryResponse, error)
}

// AppInfoService serves build-level application metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
