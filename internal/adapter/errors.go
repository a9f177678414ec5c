package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks a transport-level failure: the request never
	// produced an HTTP response. Transient; retried by caller policy and
	// never mutates local sync state.
	ErrNetwork = errors.New("network failure")

	// ErrUnauthorized marks a rejected or expired session.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrOutdated marks a compare-and-swap rejection: the server already
	// holds a newer revision. Expected and non-fatal — the caller must
	// fetch, merge, and retry, never re-send the same blob.
	ErrOutdated = errors.New("vault revision outdated")

	// ErrBadRequest and ErrServer cover the remaining status classes.
	ErrBadRequest = errors.New("bad request")
	ErrServer     = errors.New("server failure")
)

// OutdatedError carries the server's actual latest revision alongside the
// ErrOutdated sentinel, so the caller can download it without another
// status round trip.
type OutdatedError struct {
	ActualRevision int64
}

func (e *OutdatedError) Error() string {
	return fmt.Sprintf("vault revision outdated: server is at %d", e.ActualRevision)
}

// Unwrap lets errors.Is(err, ErrOutdated) succeed on an *OutdatedError.
func (e *OutdatedError) Unwrap() error {
	return ErrOutdated
}

// AsOutdated extracts the actual server revision from an error chain
// containing an *OutdatedError.
func AsOutdated(err error) (int64, bool) {
	var outdated *OutdatedError
	if errors.As(err, &outdated) {
		return outdated.ActualRevision, true
	}
	return 0, false
}
