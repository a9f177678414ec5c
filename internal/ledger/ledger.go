// SPDX-License-Identifier: Apache-2.0

// Package ledger defines the server-side revision ledger: one authoritative
// encrypted blob per vault, tagged with a monotonically increasing revision
// number and guarded by compare-and-swap writes. The CAS is the sole
// cross-client ordering authority — two clients racing to save at the same
// claimed revision have exactly one winner, and the loser is forced through
// the merge path instead of silently overwriting.
package ledger

import (
	"context"
	"errors"

	"github.com/ykarpov/go-vault-sync/models"
)

// ErrVaultNotFound is returned by GetLatest when the user has never saved
// a vault. The revision for such a user is zero.
var ErrVaultNotFound = errors.New("vault not found")

// SaveResult reports a TrySave verdict. On SaveStatusOk NewRevision is the
// revision the blob was stored under; on SaveStatusOutdated it is the
// server's actual latest revision so the caller can fetch-merge-retry
// without an extra round trip.
type SaveResult struct {
	Status      models.SaveStatus
	NewRevision int64

	// RecoveryGap is true when an accepted save skipped revisions, i.e.
	// the claimed revision was ahead of the server's actual one. This is
	// the server-side acknowledgement of a rollback recovery.
	RecoveryGap bool
}

// Ledger stores at most one latest blob per user. A successful TrySave is
// the only way the authoritative revision advances; there is no row-level
// update at this layer — every save replaces the whole blob.
type Ledger interface {
	// GetLatest returns the current authoritative record for the user.
	// It never blocks writers. Returns ErrVaultNotFound when no save has
	// ever happened.
	GetLatest(ctx context.Context, userID int64) (models.VaultRecord, error)

	// TrySave attempts to store blob as revision claimedCurrentRevision+1.
	// If the server's actual latest revision is already at or beyond that,
	// the save is rejected with SaveStatusOutdated carrying the actual
	// revision, and stored state is untouched. A claimed revision ahead of
	// the actual one is accepted and leaves a revision gap — the audit
	// trace of a rollback recovery.
	TrySave(ctx context.Context, userID, claimedCurrentRevision int64, blob []byte) (SaveResult, error)

	// History lists the most recent save audit entries, newest first.
	History(ctx context.Context, userID int64, limit int) ([]models.VaultHistoryEntry, error)
}
