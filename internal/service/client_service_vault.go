// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ykarpov/go-vault-sync/internal/crypto"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/merge"
	"github.com/ykarpov/go-vault-sync/internal/store"
	"github.com/ykarpov/go-vault-sync/models"
)

// ErrUnregisteredTable is returned by vault edits targeting a table the
// merge registry does not know. Only registered tables sync correctly, so
// writes to anything else are refused outright.
var ErrUnregisteredTable = errors.New("table is not registered for sync")

// clientVaultService is the concrete ClientVaultService. Every write goes
// through decrypt, mutate, re-encrypt, persist: the stored blob is always
// sealed, and the sync state is touched so the next sync attempt uploads.
type clientVaultService struct {
	cipher    crypto.VaultCipherService
	stateRepo store.LocalStateRepository
	registry  *merge.Registry

	keyMu sync.RWMutex
	key   []byte

	logger *logger.Logger
	now    func() time.Time
}

// NewClientVaultService constructs a ClientVaultService over the given
// registry. A nil registry selects the default one.
func NewClientVaultService(
	cipher crypto.VaultCipherService,
	stateRepo store.LocalStateRepository,
	registry *merge.Registry,
	logger *logger.Logger,
) ClientVaultService {
	if registry == nil {
		registry = merge.DefaultRegistry()
	}
	return &clientVaultService{
		cipher:    cipher,
		stateRepo: stateRepo,
		registry:  registry,
		logger:    logger,
		now:       time.Now,
	}
}

// SetKey implements [KeyHolder].
func (s *clientVaultService) SetKey(key []byte) {
	s.keyMu.Lock()
	s.key = append([]byte(nil), key...)
	s.keyMu.Unlock()
}

// ClearKey implements [KeyHolder].
func (s *clientVaultService) ClearKey() {
	s.keyMu.Lock()
	s.key = nil
	s.keyMu.Unlock()
}

func (s *clientVaultService) vaultKey() ([]byte, error) {
	s.keyMu.RLock()
	defer s.keyMu.RUnlock()
	if len(s.key) == 0 {
		return nil, ErrNotAuthenticated
	}
	return s.key, nil
}

// Snapshot implements [ClientVaultService].
func (s *clientVaultService) Snapshot(ctx context.Context) (models.Snapshot, error) {
	_, snapshot, _, err := s.load(ctx)
	return snapshot, err
}

// PutRow implements [ClientVaultService]. The row's timestamp column is
// stamped with the current time; an existing row with the same identity
// key is replaced, otherwise the row is appended.
func (s *clientVaultService) PutRow(ctx context.Context, table string, row models.Row) error {
	desc, ok := s.registry.Lookup(table)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredTable, table)
	}

	state, snapshot, key, err := s.load(ctx)
	if err != nil {
		return err
	}

	stamped := make(models.Row, len(row)+2)
	for col, v := range row {
		stamped[col] = v
	}
	nowStr := s.now().UTC().Format(time.RFC3339Nano)
	stamped[desc.TimestampColumn] = nowStr

	rowKey, ok := desc.Key(stamped)
	if !ok {
		return fmt.Errorf("%w: row is missing identity key for table %s", merge.ErrConfiguration, table)
	}

	replaced := false
	out := snapshot.Tables[table]
	for i, existing := range out {
		if existingKey, ok := desc.Key(existing); ok && existingKey == rowKey {
			if desc.CreatedColumn != "" {
				if created, ok := existing.String(desc.CreatedColumn); ok {
					stamped[desc.CreatedColumn] = created
				}
			}
			out[i] = stamped
			replaced = true
			break
		}
	}
	if !replaced {
		if desc.CreatedColumn != "" {
			if _, ok := stamped.String(desc.CreatedColumn); !ok {
				stamped[desc.CreatedColumn] = nowStr
			}
		}
		out = append(out, stamped)
	}
	snapshot.Tables[table] = out

	return s.persist(ctx, state, snapshot, key)
}

// DeleteRow implements [ClientVaultService]. The row is tombstoned in
// place; deleting a row that does not exist writes a bare tombstone so
// the deletion still propagates to other clients.
func (s *clientVaultService) DeleteRow(ctx context.Context, table string, key models.Row) error {
	desc, ok := s.registry.Lookup(table)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredTable, table)
	}
	if !desc.SoftDelete {
		return fmt.Errorf("%w: table %s does not support deletion", merge.ErrConfiguration, table)
	}

	rowKey, ok := desc.Key(key)
	if !ok {
		return fmt.Errorf("%w: missing identity key for table %s", merge.ErrConfiguration, table)
	}

	state, snapshot, vaultKey, err := s.load(ctx)
	if err != nil {
		return err
	}

	nowStr := s.now().UTC().Format(time.RFC3339Nano)
	found := false
	out := snapshot.Tables[table]
	for i, existing := range out {
		existingKey, ok := desc.Key(existing)
		if !ok || existingKey != rowKey {
			continue
		}
		tombstone := make(models.Row, len(existing)+2)
		for col, v := range existing {
			tombstone[col] = v
		}
		tombstone[desc.DeletedFlagColumn] = true
		tombstone[desc.DeletedAtColumn] = nowStr
		out[i] = tombstone
		found = true
		break
	}
	if !found {
		tombstone := make(models.Row, len(key)+3)
		for col, v := range key {
			tombstone[col] = v
		}
		tombstone[desc.TimestampColumn] = nowStr
		tombstone[desc.DeletedFlagColumn] = true
		tombstone[desc.DeletedAtColumn] = nowStr
		out = append(out, tombstone)
	}
	snapshot.Tables[table] = out

	return s.persist(ctx, state, snapshot, vaultKey)
}

// load returns the persisted state, its decrypted snapshot, and the vault
// key. A client with no state yet gets an empty snapshot.
func (s *clientVaultService) load(ctx context.Context) (models.LocalVaultState, models.Snapshot, []byte, error) {
	key, err := s.vaultKey()
	if err != nil {
		return models.LocalVaultState{}, models.Snapshot{}, nil, err
	}

	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		if errors.Is(err, store.ErrLocalStateNotFound) {
			return models.LocalVaultState{}, models.NewSnapshot(), key, nil
		}
		return models.LocalVaultState{}, models.Snapshot{}, nil, fmt.Errorf("loading vault state: %w", err)
	}

	if len(state.EncryptedBlob) == 0 {
		return state, models.NewSnapshot(), key, nil
	}

	snapshot, err := s.cipher.DecryptSnapshot(state.EncryptedBlob, key)
	if err != nil {
		return models.LocalVaultState{}, models.Snapshot{}, nil, fmt.Errorf("local snapshot: %w", err)
	}
	return state, snapshot, key, nil
}

// persist seals the snapshot and saves it with a touched sync state.
func (s *clientVaultService) persist(ctx context.Context, state models.LocalVaultState, snapshot models.Snapshot, key []byte) error {
	blob, err := s.cipher.EncryptSnapshot(snapshot, key)
	if err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}

	state.EncryptedBlob = blob
	state.Sync = state.Sync.Touch()
	if err = s.stateRepo.SaveState(ctx, state); err != nil {
		return fmt.Errorf("saving vault state: %w", err)
	}

	s.logger.Debug().
		Int64("mutation_seq", state.Sync.MutationSequence).
		Msg("local vault updated")
	return nil
}
