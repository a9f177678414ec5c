package models

import "time"

// VaultRecord is the authoritative server-side state of one user's vault:
// a single opaque encrypted blob tagged with a monotonically increasing
// revision number. The server never inspects the blob.
type VaultRecord struct {
	UserID   int64     `json:"user_id"`
	Revision int64     `json:"revision"`
	Blob     []byte    `json:"blob"`
	SavedAt  time.Time `json:"saved_at"`
}

// TableName returns the name of the database table
// associated with the VaultRecord model.
func (v VaultRecord) TableName() string {
	return "vaults"
}

// VaultHistoryEntry is one row of the per-save audit trail the server keeps
// alongside the latest blob. RecoveryGap marks a save whose revision jumped
// more than one ahead of its predecessor — the trace a rollback recovery
// deliberately leaves behind.
type VaultHistoryEntry struct {
	Revision    int64     `json:"revision"`
	BlobSize    int64     `json:"blob_size"`
	SavedAt     time.Time `json:"saved_at"`
	RecoveryGap bool      `json:"recovery_gap"`
}

// TableName returns the name of the database table
// associated with the VaultHistoryEntry model.
func (v VaultHistoryEntry) TableName() string {
	return "vault_history"
}
