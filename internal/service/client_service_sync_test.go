// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ykarpov/go-vault-sync/internal/adapter"
	"github.com/ykarpov/go-vault-sync/internal/crypto"
	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/merge"
	"github.com/ykarpov/go-vault-sync/internal/mock"
	"github.com/ykarpov/go-vault-sync/models"
)

const onlineVersion = "1.2.3"

// newTestCoordinator wires a coordinator over a real cipher, merge engine,
// and pruner; only the server adapter is mocked.
func newTestCoordinator(t *testing.T, ctrl *gomock.Controller) (*syncCoordinator, *mock.MockServerAdapter, crypto.VaultCipherService, []byte) {
	t.Helper()

	registry := merge.DefaultRegistry()
	engine, err := merge.NewEngine(registry)
	require.NoError(t, err)
	pruner, err := merge.NewPruner(registry)
	require.NoError(t, err)

	cipher := crypto.NewVaultCipherService()
	key := cipher.DeriveKey("correct horse battery staple", []byte("0123456789abcdef"))

	mockAdapter := mock.NewMockServerAdapter(ctrl)
	coordinator := NewSyncCoordinator(mockAdapter, cipher, engine, pruner, 0, 3, logger.Nop()).(*syncCoordinator)
	coordinator.SetKey(key)

	return coordinator, mockAdapter, cipher, key
}

// sealSnapshot encrypts a one-table snapshot holding the given cipher rows.
func sealSnapshot(t *testing.T, cipher crypto.VaultCipherService, key []byte, rows ...models.Row) []byte {
	t.Helper()
	snapshot := models.NewSnapshot()
	snapshot.Tables["ciphers"] = models.Table(rows)
	blob, err := cipher.EncryptSnapshot(snapshot, key)
	require.NoError(t, err)
	return blob
}

func cipherRow(id, name, updatedAt string) models.Row {
	return models.Row{"id": id, "name": name, "updated_at": updatedAt}
}

func onlineStatus(revision int64) models.StatusResponse {
	return models.StatusResponse{ServerVersion: onlineVersion, VaultRevision: revision}
}

func TestSyncCoordinator_Attempt_UpToDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, cipherRow("c1", "mail", "2026-08-01T10:00:00Z")),
		Sync:          models.SyncState{LocalRevision: 7},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(7), nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpToDate, outcome)
	assert.Equal(t, vault, next)
}

func TestSyncCoordinator_Attempt_Offline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, _, _ := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	vault := models.LocalVaultState{Sync: models.SyncState{LocalRevision: 3, Dirty: true}}

	mockAdapter.EXPECT().Status(ctx).
		Return(models.StatusResponse{ServerVersion: models.OfflineServerVersion}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOffline, outcome)
	assert.Equal(t, vault, next, "offline attempt must not touch the state")
}

func TestSyncCoordinator_Attempt_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	blob := sealSnapshot(t, cipher, key, cipherRow("c1", "mail", "2026-08-01T10:00:00Z"))
	vault := models.LocalVaultState{
		EncryptedBlob: blob,
		Sync:          models.SyncState{LocalRevision: 5, Dirty: true, MutationSequence: 12},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(5), nil)
	mockAdapter.EXPECT().
		SaveVault(ctx, models.SaveVaultRequest{CurrentRevisionNumber: 5, Blob: blob}).
		Return(models.SaveVaultResponse{Status: models.SaveStatusOk, NewRevisionNumber: 6}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUploaded, outcome)
	assert.Equal(t, int64(6), next.Sync.LocalRevision)
	assert.False(t, next.Sync.Dirty)
	assert.Equal(t, int64(12), next.Sync.MutationSequence, "mutation counter survives a sync")
	assert.Equal(t, blob, next.EncryptedBlob, "upload sends the stored blob verbatim")
}

func TestSyncCoordinator_Attempt_UploadRaceDemotesToMerge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	localBlob := sealSnapshot(t, cipher, key, cipherRow("local", "mail", "2026-08-02T10:00:00Z"))
	remoteBlob := sealSnapshot(t, cipher, key, cipherRow("remote", "bank", "2026-08-02T11:00:00Z"))
	vault := models.LocalVaultState{
		EncryptedBlob: localBlob,
		Sync:          models.SyncState{LocalRevision: 5, Dirty: true},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(5), nil)
	// Another client advanced the server between the probe and the save.
	mockAdapter.EXPECT().
		SaveVault(ctx, models.SaveVaultRequest{CurrentRevisionNumber: 5, Blob: localBlob}).
		Return(models.SaveVaultResponse{}, &adapter.OutdatedError{ActualRevision: 6})
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 6, Blob: remoteBlob}, nil)

	var saved models.SaveVaultRequest
	mockAdapter.EXPECT().
		SaveVault(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
			saved = req
			return models.SaveVaultResponse{Status: models.SaveStatusOk, NewRevisionNumber: 7}, nil
		})

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)
	assert.Equal(t, int64(7), next.Sync.LocalRevision)
	assert.False(t, next.Sync.Dirty)

	require.Equal(t, int64(6), saved.CurrentRevisionNumber, "merged save claims the downloaded revision")
	merged, err := cipher.DecryptSnapshot(saved.Blob, key)
	require.NoError(t, err)
	assert.Len(t, merged.Tables["ciphers"], 2, "merge keeps both sides' edits")
}

func TestSyncCoordinator_Attempt_DownloadAdoptsWhenClean(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	remoteBlob := sealSnapshot(t, cipher, key, cipherRow("remote", "bank", "2026-08-02T11:00:00Z"))
	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, cipherRow("old", "mail", "2026-08-01T10:00:00Z")),
		Sync:          models.SyncState{LocalRevision: 4},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(9), nil)
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 9, Blob: remoteBlob}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, outcome)
	assert.Equal(t, int64(9), next.Sync.LocalRevision)
	assert.Equal(t, remoteBlob, next.EncryptedBlob, "clean client adopts the server snapshot verbatim")
}

func TestSyncCoordinator_Attempt_DownloadPrunesExpiredTombstones(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	live := cipherRow("live", "mail", "2026-08-01T10:00:00Z")
	expired := models.Row{
		"id": "gone", "name": "old", "updated_at": "2026-05-01T10:00:00Z",
		"is_deleted": true, "deleted_at": "2026-05-01T10:00:00Z",
	}
	remoteBlob := sealSnapshot(t, cipher, key, live, expired)
	vault := models.LocalVaultState{Sync: models.SyncState{LocalRevision: 4}}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(9), nil)
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 9, Blob: remoteBlob}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, outcome)

	adopted, err := cipher.DecryptSnapshot(next.EncryptedBlob, key)
	require.NoError(t, err)
	require.Len(t, adopted.Tables["ciphers"], 1)
	id, _ := adopted.Tables["ciphers"][0].String("id")
	assert.Equal(t, "live", id)
}

func TestSyncCoordinator_Attempt_MergeWhenDirtyAndBehind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	localBlob := sealSnapshot(t, cipher, key,
		cipherRow("shared", "mail-local", "2026-08-03T09:00:00Z"),
		cipherRow("local-only", "notes", "2026-08-03T08:00:00Z"),
	)
	remoteBlob := sealSnapshot(t, cipher, key,
		cipherRow("shared", "mail-remote", "2026-08-03T10:00:00Z"),
	)
	vault := models.LocalVaultState{
		EncryptedBlob: localBlob,
		Sync:          models.SyncState{LocalRevision: 4, Dirty: true},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(8), nil)
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 8, Blob: remoteBlob}, nil)

	var saved models.SaveVaultRequest
	mockAdapter.EXPECT().
		SaveVault(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
			saved = req
			return models.SaveVaultResponse{Status: models.SaveStatusOk, NewRevisionNumber: 9}, nil
		})

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)
	assert.Equal(t, int64(9), next.Sync.LocalRevision)
	assert.False(t, next.Sync.Dirty)

	merged, err := cipher.DecryptSnapshot(saved.Blob, key)
	require.NoError(t, err)
	rows := merged.Tables["ciphers"]
	require.Len(t, rows, 2)

	names := map[string]string{}
	for _, row := range rows {
		id, _ := row.String("id")
		name, _ := row.String("name")
		names[id] = name
	}
	assert.Equal(t, "mail-remote", names["shared"], "newer timestamp wins per row")
	assert.Equal(t, "notes", names["local-only"])
}

func TestSyncCoordinator_Attempt_RollbackRecovery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	blob := sealSnapshot(t, cipher, key, cipherRow("c1", "mail", "2026-08-01T10:00:00Z"))
	vault := models.LocalVaultState{
		EncryptedBlob: blob,
		Sync:          models.SyncState{LocalRevision: 100},
	}

	// Server restored from backup: it regressed to revision 95.
	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(95), nil)
	mockAdapter.EXPECT().
		SaveVault(ctx, models.SaveVaultRequest{CurrentRevisionNumber: 100, Blob: blob}).
		Return(models.SaveVaultResponse{Status: models.SaveStatusOk, NewRevisionNumber: 101}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRecovered, outcome)
	assert.Equal(t, int64(101), next.Sync.LocalRevision, "recovery leaves a revision gap on the server")
	assert.Equal(t, blob, next.EncryptedBlob)
}

func TestSyncCoordinator_Attempt_SecondAttemptFailsFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, _, _, _ := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	// Hold the in-flight token as a running attempt would.
	<-coordinator.inFlight

	vault := models.LocalVaultState{Sync: models.SyncState{LocalRevision: 3}}
	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.ErrorIs(t, err, ErrSyncInFlight)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, vault, next)

	// Release and verify the coordinator works again.
	coordinator.inFlight <- struct{}{}
}

func TestSyncCoordinator_Attempt_DecryptFailureEscalates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	ctx := context.Background()

	wrongKey := cipher.DeriveKey("another password entirely", []byte("fedcba9876543210"))
	remoteBlob := sealSnapshot(t, cipher, wrongKey, cipherRow("r1", "bank", "2026-08-02T11:00:00Z"))

	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, cipherRow("l1", "mail", "2026-08-01T10:00:00Z")),
		Sync:          models.SyncState{LocalRevision: 4, Dirty: true},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(8), nil)
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 8, Blob: remoteBlob}, nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.ErrorIs(t, err, crypto.ErrDecryptFailure, "undecryptable blob must escalate, never merge")
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, vault, next)
}

func TestSyncCoordinator_Attempt_MergeRetriesExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.maxMergeRetries = 2
	ctx := context.Background()

	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, cipherRow("l1", "mail", "2026-08-01T10:00:00Z")),
		Sync:          models.SyncState{LocalRevision: 4, Dirty: true},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(8), nil)

	// Every cycle fetches fresh and loses the save race again.
	revision := int64(8)
	mockAdapter.EXPECT().DownloadVault(ctx).Times(2).
		DoAndReturn(func(context.Context) (models.VaultResponse, error) {
			revision++
			return models.VaultResponse{
				Revision: revision,
				Blob:     sealSnapshot(t, cipher, key, cipherRow("r1", "bank", "2026-08-02T11:00:00Z")),
			}, nil
		})
	mockAdapter.EXPECT().SaveVault(ctx, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
			return models.SaveVaultResponse{}, &adapter.OutdatedError{ActualRevision: req.CurrentRevisionNumber + 1}
		})

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.ErrorIs(t, err, ErrMergeRetriesExhausted)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, vault, next)
}

func TestSyncCoordinator_Attempt_NoKeyOnDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.ClearKey()
	ctx := context.Background()

	remoteBlob := sealSnapshot(t, cipher, key, cipherRow("r1", "bank", "2026-08-02T11:00:00Z"))
	vault := models.LocalVaultState{Sync: models.SyncState{LocalRevision: 4}}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(9), nil)
	mockAdapter.EXPECT().DownloadVault(ctx).
		Return(models.VaultResponse{Revision: 9, Blob: remoteBlob}, nil)

	_, outcome, err := coordinator.Attempt(ctx, vault)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, OutcomeNone, outcome)
}

func TestSyncCoordinator_Attempt_UpToDatePrunesExpiredTombstones(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	live := cipherRow("live", "mail", "2026-08-01T10:00:00Z")
	expired := models.Row{
		"id": "gone", "name": "old", "updated_at": "2025-12-01T10:00:00Z",
		"is_deleted": true, "deleted_at": "2025-12-01T10:00:00Z",
	}
	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, live, expired),
		Sync:          models.SyncState{LocalRevision: 5, MutationSequence: 3},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(5), nil)

	// The shrunk snapshot goes straight up so the server sheds the
	// tombstone too.
	var saved models.SaveVaultRequest
	mockAdapter.EXPECT().
		SaveVault(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
			saved = req
			return models.SaveVaultResponse{Status: models.SaveStatusOk, NewRevisionNumber: 6}, nil
		})

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUploaded, outcome)
	assert.Equal(t, int64(6), next.Sync.LocalRevision)
	assert.False(t, next.Sync.Dirty)
	assert.Equal(t, int64(4), next.Sync.MutationSequence, "pruning counts as a local mutation")

	require.Equal(t, int64(5), saved.CurrentRevisionNumber)
	pruned, err := cipher.DecryptSnapshot(saved.Blob, key)
	require.NoError(t, err)
	require.Len(t, pruned.Tables["ciphers"], 1)
	id, _ := pruned.Tables["ciphers"][0].String("id")
	assert.Equal(t, "live", id)
}

func TestSyncCoordinator_Attempt_UpToDateFreshTombstoneSurvives(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	recent := models.Row{
		"id": "fresh", "name": "new", "updated_at": "2026-08-25T10:00:00Z",
		"is_deleted": true, "deleted_at": "2026-08-25T10:00:00Z",
	}
	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, recent),
		Sync:          models.SyncState{LocalRevision: 5},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(5), nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpToDate, outcome)
	assert.Equal(t, vault, next, "a tombstone inside the retention window changes nothing")
}

func TestSyncCoordinator_Attempt_UpToDateLockedVaultSkipsPruning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	coordinator, mockAdapter, cipher, key := newTestCoordinator(t, ctrl)
	coordinator.ClearKey()
	ctx := context.Background()

	vault := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, cipherRow("c1", "mail", "2026-08-01T10:00:00Z")),
		Sync:          models.SyncState{LocalRevision: 5},
	}

	mockAdapter.EXPECT().Status(ctx).Return(onlineStatus(5), nil)

	next, outcome, err := coordinator.Attempt(ctx, vault)
	require.NoError(t, err, "an up-to-date attempt without the key is not an auth failure")
	assert.Equal(t, OutcomeUpToDate, outcome)
	assert.Equal(t, vault, next)
}

// ledgerBackedAdapter serves a coordinator straight from a shared in-memory
// revision ledger, so two coordinators can race through the real CAS
// instead of a scripted mock.
type ledgerBackedAdapter struct {
	ledger *ledger.MemoryLedger
	userID int64
	token  string

	// afterStatus, when set, runs once right after a status probe reads
	// the revision — the window in which another client can win the race.
	afterStatus func()
}

func (a *ledgerBackedAdapter) SetToken(token string) { a.token = token }
func (a *ledgerBackedAdapter) Token() string         { return a.token }

func (a *ledgerBackedAdapter) Register(_ context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (a *ledgerBackedAdapter) Login(_ context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (a *ledgerBackedAdapter) RequestSalt(_ context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (a *ledgerBackedAdapter) Status(ctx context.Context) (models.StatusResponse, error) {
	var revision int64
	record, err := a.ledger.GetLatest(ctx, a.userID)
	switch {
	case err == nil:
		revision = record.Revision
	case errors.Is(err, ledger.ErrVaultNotFound):
	default:
		return models.StatusResponse{}, err
	}

	if a.afterStatus != nil {
		hook := a.afterStatus
		a.afterStatus = nil
		hook()
	}

	return models.StatusResponse{ServerVersion: onlineVersion, VaultRevision: revision}, nil
}

func (a *ledgerBackedAdapter) DownloadVault(ctx context.Context) (models.VaultResponse, error) {
	record, err := a.ledger.GetLatest(ctx, a.userID)
	if err != nil {
		return models.VaultResponse{}, err
	}
	return models.VaultResponse{Revision: record.Revision, Blob: record.Blob}, nil
}

func (a *ledgerBackedAdapter) SaveVault(ctx context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
	result, err := a.ledger.TrySave(ctx, a.userID, req.CurrentRevisionNumber, req.Blob)
	if err != nil {
		return models.SaveVaultResponse{}, err
	}
	if result.Status == models.SaveStatusOutdated {
		return models.SaveVaultResponse{}, &adapter.OutdatedError{ActualRevision: result.NewRevision}
	}
	return models.SaveVaultResponse{
		Status:            result.Status,
		NewRevisionNumber: result.NewRevision,
		RecoveryGap:       result.RecoveryGap,
	}, nil
}

// Two clients at the same revision save distinct edits. One wins the CAS;
// the loser is forced through fetch-merge-retry, and the final server
// snapshot holds both edits.
func TestSyncCoordinator_RaceThroughLedger_NoSilentLoss(t *testing.T) {
	ctx := context.Background()
	const userID int64 = 1

	registry := merge.DefaultRegistry()
	engine, err := merge.NewEngine(registry)
	require.NoError(t, err)
	pruner, err := merge.NewPruner(registry)
	require.NoError(t, err)

	cipher := crypto.NewVaultCipherService()
	key := cipher.DeriveKey("correct horse battery staple", []byte("0123456789abcdef"))

	sharedLedger := ledger.NewMemoryLedger()
	newCoordinator := func(serverAdapter adapter.ServerAdapter) *syncCoordinator {
		c := NewSyncCoordinator(serverAdapter, cipher, engine, pruner, 0, 3, logger.Nop()).(*syncCoordinator)
		c.SetKey(key)
		return c
	}

	adapterA := &ledgerBackedAdapter{ledger: sharedLedger, userID: userID}
	adapterB := &ledgerBackedAdapter{ledger: sharedLedger, userID: userID}
	coordinatorA := newCoordinator(adapterA)
	coordinatorB := newCoordinator(adapterB)

	base := cipherRow("base", "mail", "2026-08-01T10:00:00Z")
	seeded, err := sharedLedger.TrySave(ctx, userID, 0, sealSnapshot(t, cipher, key, base))
	require.NoError(t, err)
	require.Equal(t, int64(1), seeded.NewRevision)

	// Both clients start from revision 1 and edit different rows.
	stateA := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, base,
			cipherRow("a-only", "notes", "2026-08-02T09:00:00Z")),
		Sync: models.SyncState{LocalRevision: 1, Dirty: true},
	}
	stateB := models.LocalVaultState{
		EncryptedBlob: sealSnapshot(t, cipher, key, base,
			cipherRow("b-only", "bank", "2026-08-02T10:00:00Z")),
		Sync: models.SyncState{LocalRevision: 1, Dirty: true},
	}

	// Client A sneaks its save in between B's status probe and B's save,
	// so B's upload hits the CAS with a stale claim.
	adapterB.afterStatus = func() {
		next, outcome, err := coordinatorA.Attempt(ctx, stateA)
		require.NoError(t, err)
		require.Equal(t, OutcomeUploaded, outcome)
		require.Equal(t, int64(2), next.Sync.LocalRevision)
	}

	nextB, outcome, err := coordinatorB.Attempt(ctx, stateB)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome, "the CAS loser must merge, never re-send")
	assert.Equal(t, int64(3), nextB.Sync.LocalRevision)
	assert.False(t, nextB.Sync.Dirty)

	final, err := sharedLedger.GetLatest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), final.Revision)

	merged, err := cipher.DecryptSnapshot(final.Blob, key)
	require.NoError(t, err)
	require.Len(t, merged.Tables["ciphers"], 3, "both clients' edits reach the server")

	ids := make(map[string]bool, 3)
	for _, row := range merged.Tables["ciphers"] {
		id, _ := row.String("id")
		ids[id] = true
	}
	assert.True(t, ids["base"] && ids["a-only"] && ids["b-only"])
}
