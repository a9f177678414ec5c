package merge

import (
	"fmt"
	"sort"
	"time"

	"github.com/ykarpov/go-vault-sync/models"
)

// Engine reconciles two divergent vault snapshots row-by-row with
// last-writer-wins semantics. It is stateless apart from its registry and
// safe for concurrent use.
type Engine struct {
	registry *Registry
}

// NewEngine constructs an Engine over the given table registry.
func NewEngine(registry *Registry) (*Engine, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	return &Engine{registry: registry}, nil
}

// Merge reconciles local and remote, two successors of a common ancestor
// revision, into a single snapshot. Per registered table:
//
//   - a row present on only one side is kept as-is (pure insertion);
//   - a row present on both sides is decided by its effective timestamp
//     (the tombstone timestamp for deleted rows): the strictly newer row
//     wins in full, and a tie goes to remote, because remote is what every
//     other client will download — preferring it guarantees convergence;
//   - a tombstone beats an older live row, and a live edit newer than the
//     tombstone resurrects the row.
//
// Tables absent from the registry are not merged row-wise: the remote copy
// is taken when present, otherwise the local one survives. Output rows are
// sorted by identity key, so the result does not depend on input ordering.
//
// Merging snapshots that do not share an ancestor is undefined. Cross-table
// referential cleanup is the owning repository's concern, not Merge's.
func (e *Engine) Merge(local, remote models.Snapshot) (models.Snapshot, error) {
	merged := models.NewSnapshot()

	for _, name := range unionTableNames(local, remote) {
		desc, registered := e.registry.Lookup(name)
		if !registered {
			if table, ok := remote.Tables[name]; ok {
				merged.Tables[name] = cloneTable(table)
			} else {
				merged.Tables[name] = cloneTable(local.Tables[name])
			}
			continue
		}

		table, err := e.mergeTable(desc, local.Tables[name], remote.Tables[name])
		if err != nil {
			return models.Snapshot{}, err
		}
		merged.Tables[name] = table
	}

	return merged, nil
}

type timedRow struct {
	row models.Row
	at  time.Time
}

func (e *Engine) mergeTable(desc TableDescriptor, local, remote models.Table) (models.Table, error) {
	localIdx, err := indexTable(desc, local)
	if err != nil {
		return nil, err
	}
	remoteIdx, err := indexTable(desc, remote)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(localIdx)+len(remoteIdx))
	for key := range localIdx {
		keys = append(keys, key)
	}
	for key := range remoteIdx {
		if _, seen := localIdx[key]; !seen {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make(models.Table, 0, len(keys))
	for _, key := range keys {
		l, onLocal := localIdx[key]
		r, onRemote := remoteIdx[key]

		switch {
		case onLocal && !onRemote:
			out = append(out, l.row.Clone())
		case onRemote && !onLocal:
			out = append(out, r.row.Clone())
		case l.at.After(r.at):
			out = append(out, l.row.Clone())
		default:
			// Remote wins ties so every client converges on the state the
			// server will hand out next.
			out = append(out, r.row.Clone())
		}
	}

	return out, nil
}

// indexTable maps identity key to row for one side of the merge. Any row
// with a missing key or an unparseable last-modified timestamp fails the
// whole table with ErrConfiguration. Duplicate keys within one side keep
// the row with the newer effective timestamp.
func indexTable(desc TableDescriptor, table models.Table) (map[string]timedRow, error) {
	idx := make(map[string]timedRow, len(table))
	for _, row := range table {
		key, ok := desc.Key(row)
		if !ok {
			return nil, fmt.Errorf("table %q: row without identity key %v: %w",
				desc.Name, desc.KeyColumns, ErrConfiguration)
		}

		at, err := desc.effectiveTime(row)
		if err != nil {
			return nil, err
		}

		if prev, seen := idx[key]; seen && !at.After(prev.at) {
			continue
		}
		idx[key] = timedRow{row: row, at: at}
	}
	return idx, nil
}

// effectiveTime is the timestamp a row competes with: its last-modified
// timestamp, raised to the tombstone timestamp when the row is deleted and
// the tombstone is newer. A missing or malformed last-modified timestamp is
// a configuration failure.
func (d TableDescriptor) effectiveTime(row models.Row) (time.Time, error) {
	at, ok := row.Time(d.TimestampColumn)
	if !ok {
		return time.Time{}, fmt.Errorf("table %q: row without timestamp column %q: %w",
			d.Name, d.TimestampColumn, ErrConfiguration)
	}

	if d.SoftDelete && d.DeletedAtColumn != "" && d.Deleted(row) {
		if deletedAt, has := row.Time(d.DeletedAtColumn); has && deletedAt.After(at) {
			at = deletedAt
		}
	}

	return at, nil
}

func unionTableNames(local, remote models.Snapshot) []string {
	seen := make(map[string]struct{}, len(local.Tables)+len(remote.Tables))
	names := make([]string, 0, len(seen))
	for name := range local.Tables {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for name := range remote.Tables {
		if _, dup := seen[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func cloneTable(table models.Table) models.Table {
	out := make(models.Table, 0, len(table))
	for _, row := range table {
		out = append(out, row.Clone())
	}
	return out
}
