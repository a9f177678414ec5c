// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Snapshot is the decrypted working set of a vault: every syncable table,
// fully materialized as rows. It is the unit the merge engine and the trash
// pruner operate on, and the plaintext form a vault blob decrypts into.
//
// A Snapshot is created by decrypting a downloaded blob (or by reading the
// local store), mutated by user actions, and superseded once re-encrypted
// and persisted or uploaded.
type Snapshot struct {
	// Tables maps a table name to its rows. Table names are the registry
	// names used by the merge engine ("ciphers", "folders", ...).
	Tables map[string]Table `json:"tables"`
}

// Table is an ordered collection of rows belonging to one table.
type Table []Row

// Row maps a column name to its value. Values are the JSON scalar set
// (string, float64, bool, nil) plus time.Time for rows built in-process;
// the accessor helpers below normalize between the two.
type Row map[string]any

// NewSnapshot returns an empty snapshot ready to receive tables.
func NewSnapshot() Snapshot {
	return Snapshot{Tables: make(map[string]Table)}
}

// Clone returns a deep copy of the snapshot. Rows are copied map-by-map so
// the caller may mutate the clone without affecting the receiver.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Tables: make(map[string]Table, len(s.Tables))}
	for name, table := range s.Tables {
		rows := make(Table, 0, len(table))
		for _, row := range table {
			rows = append(rows, row.Clone())
		}
		out.Tables[name] = rows
	}
	return out
}

// Encode serializes the snapshot to its canonical plaintext form: JSON with
// table rows ordered as stored. This is the byte sequence handed to the
// cipher service before upload.
func (s Snapshot) Encode() ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot parses the canonical plaintext form produced by Encode.
func DecodeSnapshot(plaintext []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(plaintext, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Tables == nil {
		s.Tables = make(map[string]Table)
	}
	return s, nil
}

// TableNames returns the snapshot's table names in sorted order, so that
// callers iterating a snapshot produce deterministic output.
func (s Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow-value copy of the row (column values are the JSON
// scalar set and are immutable for our purposes).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of column col coerced to a string. Numeric values
// are formatted the way encoding/json decoded them. ok is false when the
// column is absent or nil.
func (r Row) String(col string) (value string, ok bool) {
	v, present := r[col]
	if !present || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return trimFloat(t), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case int64:
		return fmt.Sprintf("%d", t), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// Bool returns the value of column col coerced to a bool. JSON numbers
// follow SQLite convention: zero is false, anything else is true. ok is
// false when the column is absent or nil.
func (r Row) Bool(col string) (value, ok bool) {
	v, present := r[col]
	if !present || v == nil {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case int64:
		return t != 0, true
	case string:
		return t == "1" || t == "true", true
	default:
		return false, false
	}
}

// Time returns the value of column col parsed as a timestamp. Accepted
// forms are time.Time (rows built in-process) and RFC3339/RFC3339Nano
// strings (rows decoded from JSON). ok is false when the column is absent,
// nil, or not parseable as a timestamp.
func (r Row) Time(col string) (value time.Time, ok bool) {
	v, present := r[col]
	if !present || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
