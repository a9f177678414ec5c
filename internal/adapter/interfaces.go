// SPDX-License-Identifier: Apache-2.0

// Package adapter provides transport-layer abstractions for communicating
// with the vault server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync
// coordinator from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling: [ErrOutdated] for a compare-and-swap rejection,
// [ErrUnauthorized] for 401, [ErrNetwork] for transport failures.
package adapter

import (
	"context"

	"github.com/ykarpov/go-vault-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the vault
// server. Implementations are responsible for serialization, bearer-token
// management, and mapping transport-level failures to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests. Called after a successful Register or Login.
	SetToken(token string)

	// Token returns the bearer token currently held by the adapter, or an
	// empty string if none has been set.
	Token() string

	// Register sends a registration request with the user's login, derived
	// auth hash, and salt. On success it stores the returned bearer token
	// via SetToken.
	Register(ctx context.Context, user models.User) (models.User, error)

	// Login authenticates with the pre-computed auth hash. On success it
	// stores the returned bearer token via SetToken and returns the
	// server-side user record.
	Login(ctx context.Context, user models.User) (models.User, error)

	// RequestSalt fetches the salt stored for user.Login at registration,
	// needed to derive the key before Login can compute the auth hash.
	RequestSalt(ctx context.Context, user models.User) (models.User, error)

	// Status probes GET /api/auth/status. An unreachable server is not an
	// error: the returned response carries the offline sentinel
	// [models.OfflineServerVersion] instead. Authentication failures do
	// propagate as [ErrUnauthorized].
	Status(ctx context.Context) (models.StatusResponse, error)

	// DownloadVault fetches the current authoritative blob and revision.
	DownloadVault(ctx context.Context) (models.VaultResponse, error)

	// SaveVault submits a blob under compare-and-swap semantics. A CAS
	// rejection returns an error wrapping [ErrOutdated]; use [AsOutdated]
	// to extract the server's actual revision from it.
	SaveVault(ctx context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error)
}
