// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ykarpov/go-vault-sync/internal/adapter"
	"github.com/ykarpov/go-vault-sync/internal/crypto"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/merge"
	"github.com/ykarpov/go-vault-sync/models"
)

// syncCoordinator is the concrete SyncCoordinator. One attempt is a
// critical section: the tryLock below makes overlapping triggers (timer
// plus user-initiated retry) coalesce instead of racing each other.
//
// Merge and prune are pure CPU; the adapter calls are the only suspension
// points, so cancelling ctx mid-attempt can never leave a partial write.
type syncCoordinator struct {
	adapter adapter.ServerAdapter
	cipher  crypto.VaultCipherService
	engine  *merge.Engine
	pruner  *merge.Pruner

	retention       time.Duration
	maxMergeRetries int

	keyMu sync.RWMutex
	key   []byte

	inFlight chan struct{}

	logger *logger.Logger
	now    func() time.Time
}

const defaultMaxMergeRetries = 3

// NewSyncCoordinator constructs a SyncCoordinator. A non-positive
// maxMergeRetries selects the default of 3; retention zero selects the
// pruner's 30-day default.
func NewSyncCoordinator(
	serverAdapter adapter.ServerAdapter,
	cipher crypto.VaultCipherService,
	engine *merge.Engine,
	pruner *merge.Pruner,
	retention time.Duration,
	maxMergeRetries int,
	logger *logger.Logger,
) SyncCoordinator {
	if maxMergeRetries <= 0 {
		maxMergeRetries = defaultMaxMergeRetries
	}

	c := &syncCoordinator{
		adapter:         serverAdapter,
		cipher:          cipher,
		engine:          engine,
		pruner:          pruner,
		retention:       retention,
		maxMergeRetries: maxMergeRetries,
		inFlight:        make(chan struct{}, 1),
		logger:          logger,
		now:             time.Now,
	}
	c.inFlight <- struct{}{}
	return c
}

// SetKey implements [SyncCoordinator].
func (c *syncCoordinator) SetKey(key []byte) {
	c.keyMu.Lock()
	c.key = append([]byte(nil), key...)
	c.keyMu.Unlock()
}

// ClearKey implements [SyncCoordinator].
func (c *syncCoordinator) ClearKey() {
	c.keyMu.Lock()
	c.key = nil
	c.keyMu.Unlock()
}

func (c *syncCoordinator) vaultKey() ([]byte, error) {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()
	if len(c.key) == 0 {
		return nil, ErrNotAuthenticated
	}
	return c.key, nil
}

// Attempt implements [SyncCoordinator].
//
// Transition logic per attempt, driven by the server's revision:
//   - equal revision, clean  → up to date; expired tombstones are pruned
//     and, when any were, the shrunk snapshot is uploaded;
//   - equal revision, dirty  → upload at claimed = local revision; a CAS
//     rejection means another client won the race and demotes the attempt
//     to the merge path;
//   - server ahead           → download; adopt when clean, merge and
//     re-upload when dirty;
//   - server behind          → rollback recovery: force re-upload at
//     claimed = local revision regardless of dirty, deliberately leaving
//     a revision gap as the audit trace.
//
// Decrypt failure on any blob is escalated untouched — a blob the client
// cannot open is never merged around.
func (c *syncCoordinator) Attempt(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error) {
	select {
	case <-c.inFlight:
	default:
		return vault, OutcomeNone, ErrSyncInFlight
	}
	defer func() { c.inFlight <- struct{}{} }()

	status, err := c.adapter.Status(ctx)
	if err != nil {
		return vault, OutcomeNone, fmt.Errorf("status probe failed: %w", err)
	}
	if status.ServerVersion == models.OfflineServerVersion {
		c.logger.Debug().Msg("server unreachable, sync skipped")
		return vault, OutcomeOffline, nil
	}

	serverRevision := status.VaultRevision
	localRevision := vault.Sync.LocalRevision

	log := c.logger.With().
		Int64("server_revision", serverRevision).
		Int64("local_revision", localRevision).
		Bool("dirty", vault.Sync.Dirty).
		Logger()

	switch {
	case serverRevision == localRevision && !vault.Sync.Dirty:
		log.Debug().Msg("vault up to date")
		return c.pruneIdle(ctx, vault)

	case serverRevision == localRevision:
		return c.upload(ctx, vault)

	case serverRevision > localRevision:
		return c.download(ctx, vault, serverRevision)

	default:
		return c.recover(ctx, vault)
	}
}

// pruneIdle reclaims expired tombstones from a clean, up-to-date vault.
// Without it an idle client would keep trash forever: the other prune
// call sites only run when a merge or download happens. When pruning
// removed anything, the shrunk snapshot is uploaded right away so the
// server sheds the tombstones too; otherwise the state is untouched.
//
// A locked vault (no key installed) is left alone — pruning can wait for
// the next unlocked attempt.
func (c *syncCoordinator) pruneIdle(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error) {
	if len(vault.EncryptedBlob) == 0 {
		return vault, OutcomeUpToDate, nil
	}

	key, err := c.vaultKey()
	if err != nil {
		return vault, OutcomeUpToDate, nil
	}

	snapshot, err := c.cipher.DecryptSnapshot(vault.EncryptedBlob, key)
	if err != nil {
		return vault, OutcomeNone, fmt.Errorf("local snapshot: %w", err)
	}

	pruned, prunedCount := c.pruner.Prune(snapshot, c.retention, c.now())
	if prunedCount == 0 {
		return vault, OutcomeUpToDate, nil
	}

	blob, err := c.cipher.EncryptSnapshot(pruned, key)
	if err != nil {
		return vault, OutcomeNone, fmt.Errorf("encrypting pruned snapshot: %w", err)
	}

	c.logger.Info().Int("pruned", prunedCount).Msg("expired tombstones pruned from idle vault")

	vault.EncryptedBlob = blob
	vault.Sync = vault.Sync.Touch()
	return c.upload(ctx, vault)
}

// upload sends the local blob at claimed = local revision. The blob goes
// up exactly as stored; no decrypt is needed on this path.
func (c *syncCoordinator) upload(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error) {
	resp, err := c.adapter.SaveVault(ctx, models.SaveVaultRequest{
		CurrentRevisionNumber: vault.Sync.LocalRevision,
		Blob:                  vault.EncryptedBlob,
	})
	if err != nil {
		if actual, ok := adapter.AsOutdated(err); ok {
			// Another client won the race; fall through to the merge
			// path against its snapshot.
			c.logger.Info().Int64("actual_revision", actual).Msg("upload lost the race, merging")
			return c.mergeAndSave(ctx, vault)
		}
		return vault, OutcomeNone, fmt.Errorf("vault upload failed: %w", err)
	}

	vault.Sync = vault.Sync.Synced(resp.NewRevisionNumber)
	c.logger.Info().Int64("revision", resp.NewRevisionNumber).Msg("vault uploaded")
	return vault, OutcomeUploaded, nil
}

// download fetches the server snapshot. A clean client adopts it (pruned);
// a dirty one goes through the merge path.
func (c *syncCoordinator) download(ctx context.Context, vault models.LocalVaultState, serverRevision int64) (models.LocalVaultState, SyncOutcome, error) {
	if vault.Sync.Dirty {
		return c.mergeAndSave(ctx, vault)
	}

	remote, err := c.adapter.DownloadVault(ctx)
	if err != nil {
		return vault, OutcomeNone, fmt.Errorf("vault download failed: %w", err)
	}

	adopted, err := c.pruneBlob(remote.Blob)
	if err != nil {
		return vault, OutcomeNone, err
	}

	vault.EncryptedBlob = adopted
	vault.Sync = vault.Sync.Synced(remote.Revision)
	c.logger.Info().Int64("revision", remote.Revision).Msg("vault downloaded")
	return vault, OutcomeDownloaded, nil
}

// recover handles a server that has regressed behind the client (e.g.
// restored from backup). The client's state is trusted as the most
// advanced known-good one and is force-uploaded at claimed = local
// revision; the resulting revision gap on the server is deliberate.
func (c *syncCoordinator) recover(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error) {
	resp, err := c.adapter.SaveVault(ctx, models.SaveVaultRequest{
		CurrentRevisionNumber: vault.Sync.LocalRevision,
		Blob:                  vault.EncryptedBlob,
	})
	if err != nil {
		return vault, OutcomeNone, fmt.Errorf("rollback recovery upload failed: %w", err)
	}

	c.logger.Warn().
		Int64("local_revision", vault.Sync.LocalRevision).
		Int64("new_revision", resp.NewRevisionNumber).
		Msg("rollback recovery: client snapshot force-uploaded")

	vault.Sync = vault.Sync.Synced(resp.NewRevisionNumber)
	return vault, OutcomeRecovered, nil
}

// mergeAndSave runs bounded fetch-merge-retry cycles: download the server
// snapshot, merge it with the local one, prune, re-encrypt, and save at
// claimed = the just-downloaded revision. Losing that CAS starts a fresh
// cycle — the same blob is never blindly re-sent.
func (c *syncCoordinator) mergeAndSave(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error) {
	key, err := c.vaultKey()
	if err != nil {
		return vault, OutcomeNone, err
	}

	local, err := c.decryptLocal(vault, key)
	if err != nil {
		return vault, OutcomeNone, err
	}

	for attempt := 0; attempt < c.maxMergeRetries; attempt++ {
		remoteResp, err := c.adapter.DownloadVault(ctx)
		if err != nil {
			return vault, OutcomeNone, fmt.Errorf("vault download failed: %w", err)
		}

		remote, err := c.cipher.DecryptSnapshot(remoteResp.Blob, key)
		if err != nil {
			// Wrong key: the password changed elsewhere. Escalate to the
			// session layer, never merge around it.
			return vault, OutcomeNone, fmt.Errorf("remote snapshot: %w", err)
		}

		merged, err := c.engine.Merge(local, remote)
		if err != nil {
			return vault, OutcomeNone, fmt.Errorf("merge failed: %w", err)
		}
		pruned, prunedCount := c.pruner.Prune(merged, c.retention, c.now())
		if prunedCount > 0 {
			c.logger.Debug().Int("pruned", prunedCount).Msg("expired tombstones pruned")
		}

		blob, err := c.cipher.EncryptSnapshot(pruned, key)
		if err != nil {
			return vault, OutcomeNone, fmt.Errorf("encrypting merged snapshot: %w", err)
		}

		resp, err := c.adapter.SaveVault(ctx, models.SaveVaultRequest{
			CurrentRevisionNumber: remoteResp.Revision,
			Blob:                  blob,
		})
		if err != nil {
			if _, ok := adapter.AsOutdated(err); ok {
				c.logger.Info().Int("attempt", attempt+1).Msg("merge save lost the race, refetching")
				continue
			}
			return vault, OutcomeNone, fmt.Errorf("saving merged vault failed: %w", err)
		}

		vault.EncryptedBlob = blob
		vault.Sync = vault.Sync.Synced(resp.NewRevisionNumber)
		c.logger.Info().Int64("revision", resp.NewRevisionNumber).Msg("vault merged and saved")
		return vault, OutcomeMerged, nil
	}

	return vault, OutcomeNone, ErrMergeRetriesExhausted
}

// decryptLocal opens the local blob. A client with no blob yet starts
// from an empty snapshot.
func (c *syncCoordinator) decryptLocal(vault models.LocalVaultState, key []byte) (models.Snapshot, error) {
	if len(vault.EncryptedBlob) == 0 {
		return models.NewSnapshot(), nil
	}

	local, err := c.cipher.DecryptSnapshot(vault.EncryptedBlob, key)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("local snapshot: %w", err)
	}
	return local, nil
}

// pruneBlob decrypts a downloaded blob, prunes expired tombstones, and
// re-encrypts it for local storage.
func (c *syncCoordinator) pruneBlob(blob []byte) ([]byte, error) {
	key, err := c.vaultKey()
	if err != nil {
		return nil, err
	}

	snapshot, err := c.cipher.DecryptSnapshot(blob, key)
	if err != nil {
		return nil, fmt.Errorf("downloaded snapshot: %w", err)
	}

	pruned, prunedCount := c.pruner.Prune(snapshot, c.retention, c.now())
	if prunedCount == 0 {
		return blob, nil
	}

	sealed, err := c.cipher.EncryptSnapshot(pruned, key)
	if err != nil {
		return nil, fmt.Errorf("encrypting pruned snapshot: %w", err)
	}
	return sealed, nil
}

// IsDecryptFailure reports whether err means the vault key is wrong for
// the blob it was used on.
func IsDecryptFailure(err error) bool {
	return errors.Is(err, crypto.ErrDecryptFailure)
}
