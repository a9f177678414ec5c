package models

import "time"

// LocalVaultState is the client's persisted copy of its vault: the
// encrypted blob as last written, plus the sync bookkeeping needed to
// resume after a restart. Exactly one state row exists per local store.
type LocalVaultState struct {
	// EncryptedBlob is the vault snapshot encrypted under the user's
	// vault key. Empty until the first local write or download.
	EncryptedBlob []byte `json:"encrypted_blob"`

	// Sync carries the revision, dirty flag, and mutation counter the
	// coordinator reads and writes on every attempt.
	Sync SyncState `json:"sync"`

	// Login is the account the state belongs to. A state saved by one
	// user is never served to another.
	Login string `json:"login"`

	// UpdatedAt is when the state row was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the client's persisted authentication session: the bearer
// token received at login and the identity it was issued for.
type Session struct {
	UserID    int64     `json:"user_id"`
	Login     string    `json:"login"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
