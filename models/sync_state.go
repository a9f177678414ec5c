// SPDX-License-Identifier: Apache-2.0

package models

// SyncState is the per-client bookkeeping the sync coordinator needs to
// decide between upload, download, merge, and rollback recovery. It is an
// explicit value: the coordinator receives the current state, returns the
// next one, and the caller persists it. Nothing in this struct is shared
// ambient storage.
type SyncState struct {
	// LocalRevision is the server revision the local snapshot was last
	// reconciled with. Zero means the client has never synced.
	LocalRevision int64 `json:"local_revision"`

	// Dirty is true while local edits exist that the server has not yet
	// accepted at their current revision.
	Dirty bool `json:"dirty"`

	// MutationSequence counts local writes. It is local bookkeeping only,
	// used for idempotence checks by the owning application; it is never
	// transmitted as ordering authority.
	MutationSequence int64 `json:"mutation_sequence"`
}

// Touch records one local write: the mutation counter advances and the
// state becomes dirty.
func (s SyncState) Touch() SyncState {
	s.MutationSequence++
	s.Dirty = true
	return s
}

// Synced returns the state after the server accepted the client's snapshot
// at revision. Dirty clears; the mutation counter is preserved.
func (s SyncState) Synced(revision int64) SyncState {
	s.LocalRevision = revision
	s.Dirty = false
	return s
}
