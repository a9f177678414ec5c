// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykarpov/go-vault-sync/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// cipher is a shorthand constructor for a live ciphers row used only in tests.
func cipher(id, name string, updatedAt time.Time) models.Row {
	return models.Row{
		"id":         id,
		"name":       name,
		"data":       "enc:" + name,
		"created_at": t0.Format(time.RFC3339Nano),
		"updated_at": updatedAt.Format(time.RFC3339Nano),
		"is_deleted": false,
	}
}

// tombstone is a shorthand constructor for a soft-deleted ciphers row.
func tombstone(id string, updatedAt, deletedAt time.Time) models.Row {
	return models.Row{
		"id":         id,
		"name":       "",
		"created_at": t0.Format(time.RFC3339Nano),
		"updated_at": updatedAt.Format(time.RFC3339Nano),
		"is_deleted": true,
		"deleted_at": deletedAt.Format(time.RFC3339Nano),
	}
}

func snapshotOf(table string, rows ...models.Row) models.Snapshot {
	s := models.NewSnapshot()
	s.Tables[table] = rows
	return s
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultRegistry())
	require.NoError(t, err)
	return engine
}

// rowByID finds a ciphers row by id in a merged table; fails the test when absent.
func rowByID(t *testing.T, table models.Table, id string) models.Row {
	t.Helper()
	for _, row := range table {
		if got, _ := row.String("id"); got == id {
			return row
		}
	}
	t.Fatalf("row %q not found in table of %d rows", id, len(table))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Merge — row-level LWW decision matrix
// ─────────────────────────────────────────────────────────────────────────────

func TestEngine_Merge_DecisionMatrix(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name     string
		local    models.Snapshot
		remote   models.Snapshot
		wantRows map[string]string // id → expected "name" column of the winner
	}{
		{
			name:     "LocalOnly/Kept",
			local:    snapshotOf("ciphers", cipher("1", "local-only", t0)),
			remote:   snapshotOf("ciphers"),
			wantRows: map[string]string{"1": "local-only"},
		},
		{
			name:     "RemoteOnly/Kept",
			local:    snapshotOf("ciphers"),
			remote:   snapshotOf("ciphers", cipher("1", "remote-only", t0)),
			wantRows: map[string]string{"1": "remote-only"},
		},
		{
			name:     "NewerLocal/WinsWholeRow",
			local:    snapshotOf("ciphers", cipher("1", "newer", t0.Add(2*time.Minute))),
			remote:   snapshotOf("ciphers", cipher("1", "older", t0)),
			wantRows: map[string]string{"1": "newer"},
		},
		{
			name:     "NewerRemote/WinsWholeRow",
			local:    snapshotOf("ciphers", cipher("1", "older", t0)),
			remote:   snapshotOf("ciphers", cipher("1", "newer", t0.Add(2*time.Minute))),
			wantRows: map[string]string{"1": "newer"},
		},
		{
			name:     "EqualTimestamps/RemoteWinsTie",
			local:    snapshotOf("ciphers", cipher("1", "local", t0)),
			remote:   snapshotOf("ciphers", cipher("1", "remote", t0)),
			wantRows: map[string]string{"1": "remote"},
		},
		{
			name: "DifferentRows/BothPreserved",
			local: snapshotOf("ciphers",
				cipher("1", "edited-locally", t0.Add(time.Minute)),
				cipher("2", "untouched", t0),
			),
			remote: snapshotOf("ciphers",
				cipher("1", "stale", t0),
				cipher("2", "edited-remotely", t0.Add(time.Minute)),
			),
			wantRows: map[string]string{"1": "edited-locally", "2": "edited-remotely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := engine.Merge(tt.local, tt.remote)
			require.NoError(t, err)

			table := merged.Tables["ciphers"]
			require.Len(t, table, len(tt.wantRows))
			for id, wantName := range tt.wantRows {
				row := rowByID(t, table, id)
				name, _ := row.String("name")
				assert.Equal(t, wantName, name, "winner for id %s", id)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Merge — tombstone semantics
// ─────────────────────────────────────────────────────────────────────────────

func TestEngine_Merge_TombstoneDominance(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("NewerTombstoneBeatsOlderEdit", func(t *testing.T) {
		local := snapshotOf("ciphers", cipher("1", "edited", t0.Add(time.Minute)))
		remote := snapshotOf("ciphers", tombstone("1", t0, t0.Add(5*time.Minute)))

		merged, err := engine.Merge(local, remote)
		require.NoError(t, err)

		row := rowByID(t, merged.Tables["ciphers"], "1")
		deleted, _ := row.Bool("is_deleted")
		assert.True(t, deleted, "tombstone must win over the older edit")
	})

	t.Run("NewerEditResurrectsTombstone", func(t *testing.T) {
		local := snapshotOf("ciphers", cipher("1", "resurrected", t0.Add(10*time.Minute)))
		remote := snapshotOf("ciphers", tombstone("1", t0, t0.Add(5*time.Minute)))

		merged, err := engine.Merge(local, remote)
		require.NoError(t, err)

		row := rowByID(t, merged.Tables["ciphers"], "1")
		deleted, _ := row.Bool("is_deleted")
		assert.False(t, deleted, "edit newer than the tombstone must revive the row")
		name, _ := row.String("name")
		assert.Equal(t, "resurrected", name)
	})

	t.Run("TombstoneTimestampIsTheCompetingOne", func(t *testing.T) {
		// The tombstone's updated_at is ancient but deleted_at is newest:
		// the deletion must still win.
		local := snapshotOf("ciphers", cipher("1", "edited", t0.Add(4*time.Minute)))
		remote := snapshotOf("ciphers", tombstone("1", t0.Add(-time.Hour), t0.Add(6*time.Minute)))

		merged, err := engine.Merge(local, remote)
		require.NoError(t, err)

		row := rowByID(t, merged.Tables["ciphers"], "1")
		deleted, _ := row.Bool("is_deleted")
		assert.True(t, deleted)
	})
}

// TestEngine_Merge_IndependentEditAndDelete is the canonical two-client
// scenario: client A creates one item while client B deletes a different
// pre-existing one. Both changes must survive the merge.
func TestEngine_Merge_IndependentEditAndDelete(t *testing.T) {
	engine := newTestEngine(t)

	clientA := snapshotOf("ciphers",
		cipher("1", "Foo", t0.Add(time.Minute)), // created on A
		cipher("2", "Bar", t0),                  // untouched baseline row
	)
	clientB := snapshotOf("ciphers",
		tombstone("2", t0, t0.Add(2*time.Minute)), // deleted on B
	)

	merged, err := engine.Merge(clientA, clientB)
	require.NoError(t, err)

	table := merged.Tables["ciphers"]
	require.Len(t, table, 2)

	foo := rowByID(t, table, "1")
	fooDeleted, _ := foo.Bool("is_deleted")
	assert.False(t, fooDeleted, "A's creation stays live")

	bar := rowByID(t, table, "2")
	barDeleted, _ := bar.Bool("is_deleted")
	assert.True(t, barDeleted, "B's deletion is preserved as a tombstone")
}

// ─────────────────────────────────────────────────────────────────────────────
// Merge — convergence and determinism
// ─────────────────────────────────────────────────────────────────────────────

// TestEngine_Merge_Convergence checks row-level symmetry: for every key the
// surviving state is the same whichever side is passed as local, modulo the
// explicit tie-break (equal timestamps prefer the remote argument).
func TestEngine_Merge_Convergence(t *testing.T) {
	engine := newTestEngine(t)

	left := snapshotOf("ciphers",
		cipher("1", "a-newer", t0.Add(3*time.Minute)),
		cipher("2", "b-older", t0),
		tombstone("3", t0, t0.Add(time.Minute)),
		cipher("4", "left-only", t0),
	)
	right := snapshotOf("ciphers",
		cipher("1", "a-older", t0),
		cipher("2", "b-newer", t0.Add(3*time.Minute)),
		cipher("3", "revived", t0.Add(2*time.Minute)),
		cipher("5", "right-only", t0),
	)

	lr, err := engine.Merge(left, right)
	require.NoError(t, err)
	rl, err := engine.Merge(right, left)
	require.NoError(t, err)

	lrBytes, err := lr.Encode()
	require.NoError(t, err)
	rlBytes, err := rl.Encode()
	require.NoError(t, err)

	// No timestamps are equal in this fixture, so both call orders must
	// produce the identical byte stream.
	assert.Equal(t, string(lrBytes), string(rlBytes))
}

func TestEngine_Merge_OutputOrderIndependentOfInputOrder(t *testing.T) {
	engine := newTestEngine(t)

	forward := snapshotOf("ciphers", cipher("1", "x", t0), cipher("2", "y", t0), cipher("3", "z", t0))
	reversed := snapshotOf("ciphers", cipher("3", "z", t0), cipher("2", "y", t0), cipher("1", "x", t0))
	remote := snapshotOf("ciphers")

	a, err := engine.Merge(forward, remote)
	require.NoError(t, err)
	b, err := engine.Merge(reversed, remote)
	require.NoError(t, err)

	aBytes, err := a.Encode()
	require.NoError(t, err)
	bBytes, err := b.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(aBytes), string(bBytes))
}

// ─────────────────────────────────────────────────────────────────────────────
// Merge — composite keys, unregistered tables, configuration failures
// ─────────────────────────────────────────────────────────────────────────────

func TestEngine_Merge_CompositeKey(t *testing.T) {
	engine := newTestEngine(t)

	field := func(cipherID, name, value string, updatedAt time.Time) models.Row {
		return models.Row{
			"cipher_id":  cipherID,
			"name":       name,
			"value":      value,
			"updated_at": updatedAt,
			"is_deleted": false,
		}
	}

	local := snapshotOf("cipher_fields",
		field("c1", "pin", "1234", t0.Add(time.Minute)),
		field("c1", "totp", "secret", t0),
	)
	remote := snapshotOf("cipher_fields",
		field("c1", "pin", "0000", t0),
		field("c2", "pin", "9999", t0),
	)

	merged, err := engine.Merge(local, remote)
	require.NoError(t, err)

	table := merged.Tables["cipher_fields"]
	require.Len(t, table, 3, "same name under different ciphers must not collide")

	for _, row := range table {
		cid, _ := row.String("cipher_id")
		name, _ := row.String("name")
		value, _ := row.String("value")
		if cid == "c1" && name == "pin" {
			assert.Equal(t, "1234", value, "locally newer pin wins")
		}
	}
}

func TestEngine_Merge_UnregisteredTablePassesThroughFromRemote(t *testing.T) {
	engine := newTestEngine(t)

	local := snapshotOf("kv_junk", models.Row{"anything": "local"})
	remote := snapshotOf("kv_junk", models.Row{"anything": "remote"})

	merged, err := engine.Merge(local, remote)
	require.NoError(t, err)

	require.Len(t, merged.Tables["kv_junk"], 1)
	got, _ := merged.Tables["kv_junk"][0].String("anything")
	assert.Equal(t, "remote", got, "server copy is authoritative for unsynced tables")
}

func TestEngine_Merge_ConfigurationErrors(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		local models.Snapshot
	}{
		{
			name:  "MissingIdentityKey",
			local: snapshotOf("ciphers", models.Row{"name": "orphan", "updated_at": t0}),
		},
		{
			name:  "MissingTimestamp",
			local: snapshotOf("ciphers", models.Row{"id": "1", "name": "no-ts"}),
		},
		{
			name:  "MalformedTimestamp",
			local: snapshotOf("ciphers", models.Row{"id": "1", "updated_at": "yesterday-ish"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Merge(tt.local, snapshotOf("ciphers", cipher("9", "ok", t0)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration, "table merge must fail atomically")
		})
	}
}

func TestNewEngine_NilRegistry(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrNilRegistry)
}
