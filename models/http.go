// SPDX-License-Identifier: Apache-2.0

package models

// OfflineServerVersion is the sentinel ServerVersion value a status probe
// reports when the server cannot be reached. Callers treat it as "offline"
// rather than as an error.
const OfflineServerVersion = "0.0.0"

// SaveStatus is the server's verdict on a vault save attempt.
type SaveStatus string

const (
	// SaveStatusOk means the blob was stored and the revision advanced.
	SaveStatusOk SaveStatus = "Ok"

	// SaveStatusOutdated means the compare-and-swap failed: the server
	// already holds a revision at least as new as the one the save would
	// create. The blob was not stored.
	SaveStatusOutdated SaveStatus = "Outdated"
)

// StatusResponse is the body of GET /api/auth/status. It lets a client
// decide whether to sync at all before touching the vault endpoints.
type StatusResponse struct {
	// ClientVersionSupported reports whether the calling client's version
	// is still accepted by this server.
	ClientVersionSupported bool `json:"client_version_supported"`

	// ServerVersion is the semantic version of the server, or
	// OfflineServerVersion when the probe never reached a server.
	ServerVersion string `json:"server_version"`

	// VaultRevision is the server's current authoritative revision for the
	// authenticated user's vault. Zero means no vault has been saved yet.
	VaultRevision int64 `json:"vault_revision"`

	// SRPSalt is the salt stored for the user at registration, served so
	// the client can derive its keys before authenticating.
	SRPSalt string `json:"srp_salt"`
}

// VaultResponse is the body of GET /api/vault: the current authoritative
// blob and its revision. Blob is base64 on the wire (encoding/json encodes
// []byte that way).
type VaultResponse struct {
	Revision int64  `json:"revision"`
	Blob     []byte `json:"blob"`
}

// SaveVaultRequest is the body of POST /api/vault. CurrentRevisionNumber is
// the revision the client believes is latest; the server stores the blob as
// CurrentRevisionNumber+1 only if that would advance its own latest.
type SaveVaultRequest struct {
	CurrentRevisionNumber int64  `json:"current_revision_number"`
	Blob                  []byte `json:"blob"`
}

// SaveVaultResponse reports the outcome of a save. On SaveStatusOk,
// NewRevisionNumber is the revision the blob was stored under. On
// SaveStatusOutdated it is the server's actual latest revision, so the
// caller can fetch it immediately and merge.
type SaveVaultResponse struct {
	Status            SaveStatus `json:"status"`
	NewRevisionNumber int64      `json:"new_revision_number"`

	// RecoveryGap reports that an accepted save skipped revisions — the
	// server acknowledging a rollback recovery.
	RecoveryGap bool `json:"recovery_gap,omitempty"`
}

// VaultHistoryResponse is the body of GET /api/vault/history.
type VaultHistoryResponse struct {
	Entries []VaultHistoryEntry `json:"entries"`
	Length  int                 `json:"length"`
}
