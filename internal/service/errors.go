package service

import "errors"

// Server-side service errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// Client-side service errors.
var (
	// ErrSyncInFlight is returned by a sync attempt that found another
	// attempt already running. Overlapping triggers coalesce: the caller
	// drops or re-queues, it never stacks a second attempt.
	ErrSyncInFlight = errors.New("sync already in flight")

	// ErrMergeRetriesExhausted is returned when consecutive fetch-merge
	// cycles keep losing the compare-and-swap past the configured bound.
	ErrMergeRetriesExhausted = errors.New("merge retries exhausted")

	// ErrDirtyVault is returned by a user-initiated logout while unsynced
	// local edits exist. A forced logout bypasses the check and preserves
	// the vault state for the next login.
	ErrDirtyVault = errors.New("vault has unsynced local edits")

	// ErrNotAuthenticated is returned by client operations that need a
	// session or a derived vault key before any has been established.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrRegisterOnServer = errors.New("registration on server failed")
	ErrLoginOnServer    = errors.New("login on server failed")
)
