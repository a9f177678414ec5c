package merge

import (
	"sort"
	"strings"

	"github.com/ykarpov/go-vault-sync/models"
)

// TableDescriptor declares, for one syncable table, which columns identify
// a row and which carry its modification timestamps. The engine consumes
// descriptors generically: table semantics live here, not in merge code.
type TableDescriptor struct {
	// Name is the table name as it appears in [models.Snapshot.Tables].
	Name string

	// KeyColumns identify a row. More than one column forms a composite
	// key (e.g. cipher_id + field name).
	KeyColumns []string

	// TimestampColumn carries the row's last-modified timestamp. Required
	// on every row of the table.
	TimestampColumn string

	// CreatedColumn carries the creation timestamp. Informational; the
	// engine never reads it, but the pruner preserves it like any column.
	CreatedColumn string

	// SoftDelete marks the table as tombstoning: rows are flagged deleted
	// rather than removed, so the merge can reason about deletions.
	SoftDelete bool

	// DeletedFlagColumn is the boolean/0-1 column marking a tombstone.
	// Only read when SoftDelete is set.
	DeletedFlagColumn string

	// DeletedAtColumn carries the tombstone timestamp. Only read when
	// SoftDelete is set.
	DeletedAtColumn string
}

// keySeparator joins composite key parts into one map key. The unit
// separator cannot occur in JSON-decoded scalar values we care about.
const keySeparator = "\x1f"

// Key extracts the row's identity key as a single canonical string.
// ok is false when any key column is absent, nil, or empty.
func (d TableDescriptor) Key(row models.Row) (string, bool) {
	parts := make([]string, 0, len(d.KeyColumns))
	for _, col := range d.KeyColumns {
		v, present := row.String(col)
		if !present || v == "" {
			return "", false
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, keySeparator), true
}

// Deleted reports whether the row carries a tombstone. A row is tombstoned
// when the deleted flag is set, or when a tombstone timestamp is present
// even without the flag.
func (d TableDescriptor) Deleted(row models.Row) bool {
	if !d.SoftDelete {
		return false
	}
	if d.DeletedFlagColumn != "" {
		if flag, ok := row.Bool(d.DeletedFlagColumn); ok && flag {
			return true
		}
	}
	if d.DeletedAtColumn != "" {
		if _, ok := row.Time(d.DeletedAtColumn); ok {
			return true
		}
	}
	return false
}

// Registry is the static set of table descriptors the engine and the
// pruner consult. It is immutable after construction.
type Registry struct {
	tables map[string]TableDescriptor
}

// NewRegistry builds a registry from the given descriptors.
func NewRegistry(descriptors ...TableDescriptor) *Registry {
	tables := make(map[string]TableDescriptor, len(descriptors))
	for _, d := range descriptors {
		tables[d.Name] = d
	}
	return &Registry{tables: tables}
}

// DefaultRegistry describes the vault's syncable tables. cipher_fields uses
// a composite key: one row per custom field per cipher.
func DefaultRegistry() *Registry {
	return NewRegistry(
		TableDescriptor{
			Name:              "ciphers",
			KeyColumns:        []string{"id"},
			TimestampColumn:   "updated_at",
			CreatedColumn:     "created_at",
			SoftDelete:        true,
			DeletedFlagColumn: "is_deleted",
			DeletedAtColumn:   "deleted_at",
		},
		TableDescriptor{
			Name:              "folders",
			KeyColumns:        []string{"id"},
			TimestampColumn:   "updated_at",
			CreatedColumn:     "created_at",
			SoftDelete:        true,
			DeletedFlagColumn: "is_deleted",
			DeletedAtColumn:   "deleted_at",
		},
		TableDescriptor{
			Name:              "cipher_fields",
			KeyColumns:        []string{"cipher_id", "name"},
			TimestampColumn:   "updated_at",
			SoftDelete:        true,
			DeletedFlagColumn: "is_deleted",
			DeletedAtColumn:   "deleted_at",
		},
		TableDescriptor{
			Name:            "settings",
			KeyColumns:      []string{"key"},
			TimestampColumn: "updated_at",
		},
	)
}

// Lookup returns the descriptor registered for table name.
func (r *Registry) Lookup(name string) (TableDescriptor, bool) {
	d, ok := r.tables[name]
	return d, ok
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
