package models

import "time"

// User represents an account entity used for authentication and vault
// ownership. Credential fields hold derived values only; the server never
// sees a master password or a vault encryption key in plaintext.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Login is the unique user login identifier.
	Login string `json:"login"`

	// AuthHash is the derived authentication verifier (KDF output), never
	// a plaintext password. It is compared server-side on login.
	AuthHash string `json:"auth_hash"`

	// SRPSalt is the salt generated at registration. It is public: the
	// status endpoint serves it so a client can derive its keys before
	// authenticating.
	SRPSalt string `json:"srp_salt"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
