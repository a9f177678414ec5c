package merge

import "errors"

var (
	// ErrConfiguration marks a row that violates the identity-key/timestamp
	// invariant of its table descriptor (missing or malformed key column,
	// unparseable last-modified timestamp). The affected table's merge
	// aborts atomically; rows are never silently skipped.
	ErrConfiguration = errors.New("merge configuration violated")

	// ErrNilRegistry is returned by NewEngine when no registry is supplied.
	ErrNilRegistry = errors.New("merge registry is required")
)
