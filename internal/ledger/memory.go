package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/ykarpov/go-vault-sync/models"
)

// MemoryLedger is an in-process Ledger used by tests and by single-binary
// deployments that do not need Postgres. All operations are guarded by one
// mutex; the CAS check and the store are a single critical section.
type MemoryLedger struct {
	mu      sync.Mutex
	vaults  map[int64]models.VaultRecord
	history map[int64][]models.VaultHistoryEntry

	now func() time.Time
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		vaults:  make(map[int64]models.VaultRecord),
		history: make(map[int64][]models.VaultHistoryEntry),
		now:     time.Now,
	}
}

// GetLatest implements [Ledger].
func (m *MemoryLedger) GetLatest(_ context.Context, userID int64) (models.VaultRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.vaults[userID]
	if !ok {
		return models.VaultRecord{}, ErrVaultNotFound
	}

	// Copy the blob out so callers cannot mutate stored state.
	out := record
	out.Blob = append([]byte(nil), record.Blob...)
	return out, nil
}

// TrySave implements [Ledger].
func (m *MemoryLedger) TrySave(_ context.Context, userID, claimedCurrentRevision int64, blob []byte) (SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var actual int64
	if record, ok := m.vaults[userID]; ok {
		actual = record.Revision
	}

	newRevision := claimedCurrentRevision + 1
	if actual >= newRevision {
		return SaveResult{Status: models.SaveStatusOutdated, NewRevision: actual}, nil
	}

	savedAt := m.now()
	m.vaults[userID] = models.VaultRecord{
		UserID:   userID,
		Revision: newRevision,
		Blob:     append([]byte(nil), blob...),
		SavedAt:  savedAt,
	}
	m.history[userID] = append(m.history[userID], models.VaultHistoryEntry{
		Revision:    newRevision,
		BlobSize:    int64(len(blob)),
		SavedAt:     savedAt,
		RecoveryGap: newRevision > actual+1,
	})

	return SaveResult{
		Status:      models.SaveStatusOk,
		NewRevision: newRevision,
		RecoveryGap: newRevision > actual+1,
	}, nil
}

// History implements [Ledger]. Entries are returned newest first.
func (m *MemoryLedger) History(_ context.Context, userID int64, limit int) ([]models.VaultHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history[userID]
	out := make([]models.VaultHistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, entries[i])
	}
	return out, nil
}
