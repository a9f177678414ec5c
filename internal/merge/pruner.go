package merge

import (
	"time"

	"github.com/ykarpov/go-vault-sync/models"
)

// DefaultRetention is how long tombstoned rows survive before the pruner
// reclaims them.
const DefaultRetention = 30 * 24 * time.Hour

// Pruner permanently removes soft-deleted rows whose tombstone has aged out
// of the retention window. Like the engine it is pure: no I/O, no clock —
// the caller supplies now.
type Pruner struct {
	registry *Registry
}

// NewPruner constructs a Pruner over the given table registry.
func NewPruner(registry *Registry) (*Pruner, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	return &Pruner{registry: registry}, nil
}

// Prune returns a copy of snapshot with every eligible tombstone removed,
// plus the number of rows reclaimed. A row is eligible when its table is
// registered for soft delete and its tombstone timestamp is older than
// now−retention. Rows without a tombstone timestamp are never eligible —
// absence simply means the row is not deleted — so malformed rows pass
// through untouched rather than erroring. Pruning is idempotent: a second
// run with the same now removes nothing.
//
// A non-positive retention falls back to DefaultRetention.
func (p *Pruner) Prune(snapshot models.Snapshot, retention time.Duration, now time.Time) (models.Snapshot, int) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := now.Add(-retention)

	pruned := 0
	out := models.NewSnapshot()
	for _, name := range snapshot.TableNames() {
		table := snapshot.Tables[name]

		desc, registered := p.registry.Lookup(name)
		if !registered || !desc.SoftDelete || desc.DeletedAtColumn == "" {
			out.Tables[name] = cloneTable(table)
			continue
		}

		kept := make(models.Table, 0, len(table))
		for _, row := range table {
			if desc.Deleted(row) {
				if deletedAt, ok := row.Time(desc.DeletedAtColumn); ok && deletedAt.Before(cutoff) {
					pruned++
					continue
				}
			}
			kept = append(kept, row.Clone())
		}
		out.Tables[name] = kept
	}

	return out, pruned
}
