// Package store implements the persistence layer: a PostgreSQL backend for
// the server (users, vault ledger, save audit trail) and an SQLite backend
// for the client's local vault state and session.
package store

import (
	"context"

	"github.com/ykarpov/go-vault-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository handles user account creation and lookup.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
}
