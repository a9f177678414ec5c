package service

import (
	"context"
	"time"

	"github.com/ykarpov/go-vault-sync/models"
)

// SyncOutcome names the terminal state of one sync attempt.
type SyncOutcome string

const (
	// OutcomeUpToDate — server and client agree and nothing is dirty.
	OutcomeUpToDate SyncOutcome = "up-to-date"

	// OutcomeUploaded — local edits were saved at the next revision.
	OutcomeUploaded SyncOutcome = "uploaded"

	// OutcomeDownloaded — a newer server snapshot was adopted verbatim.
	OutcomeDownloaded SyncOutcome = "downloaded"

	// OutcomeMerged — both sides had edits; the merged result was saved.
	OutcomeMerged SyncOutcome = "merged"

	// OutcomeRecovered — the server had regressed behind the client and
	// the client's snapshot was force-uploaded, leaving a revision gap.
	OutcomeRecovered SyncOutcome = "recovered"

	// OutcomeOffline — no server was reachable; nothing changed. The
	// caller retries on its own schedule.
	OutcomeOffline SyncOutcome = "offline"

	// OutcomeNone — the attempt did not run (error before the status
	// probe, or another attempt in flight).
	OutcomeNone SyncOutcome = ""
)

// LogoutVariant selects the data-retention behavior of a logout.
type LogoutVariant int

const (
	// LogoutUserInitiated refuses with ErrDirtyVault while unsynced edits
	// exist, then removes local vault state and session.
	LogoutUserInitiated LogoutVariant = iota

	// LogoutForced preserves the encrypted blob, revision, dirty flag,
	// mutation counter, and login verbatim; only the session token and
	// the derived key are cleared. Used when the session is terminated
	// from outside (expired token, password changed elsewhere).
	LogoutForced
)

// KeyHolder is anything that caches the derived vault key in memory. The
// session service installs the key on login and wipes it on logout.
type KeyHolder interface {
	SetKey(key []byte)
	ClearKey()
}

// SyncCoordinator drives the client-visible sync state machine. The vault
// state is an explicit value: the coordinator receives the current one,
// returns the next one, and the caller persists it. Attempt never
// partial-writes — on any error the returned state equals the input.
type SyncCoordinator interface {
	KeyHolder

	// Attempt runs one full sync pass: status probe, then upload,
	// download, merge, or rollback recovery as the revision comparison
	// dictates. A second Attempt while one is in flight fails fast with
	// ErrSyncInFlight.
	Attempt(ctx context.Context, vault models.LocalVaultState) (models.LocalVaultState, SyncOutcome, error)
}

// ClientSessionService handles registration, login, and the two logout
// variants on the client.
type ClientSessionService interface {
	// Register creates an account: generates a salt, derives the vault
	// key, computes the auth verifier, registers on the server, and
	// stores the session.
	Register(ctx context.Context, login, masterPassword string) error

	// Login fetches the salt, derives the key, authenticates, and stores
	// the session.
	Login(ctx context.Context, login, masterPassword string) error

	// Resume restores a stored session into the adapter, so a new process
	// can make authenticated calls without re-entering the password. The
	// derived key is NOT restored; operations needing it require Login.
	Resume(ctx context.Context) (models.Session, error)

	// Logout terminates the session per the chosen variant.
	Logout(ctx context.Context, variant LogoutVariant) error
}

// ClientVaultService is the application-facing data-access layer: it lets
// the CLI read and edit the local snapshot between syncs. Every write
// stamps the row timestamp and marks the persisted state dirty.
type ClientVaultService interface {
	KeyHolder

	// Snapshot decrypts and returns the current local snapshot. A client
	// that has never written or downloaded anything gets an empty one.
	Snapshot(ctx context.Context) (models.Snapshot, error)

	// PutRow inserts or replaces a row in a registered table, stamping
	// its timestamp column with the current time.
	PutRow(ctx context.Context, table string, row models.Row) error

	// DeleteRow tombstones the row with the given identity key values.
	DeleteRow(ctx context.Context, table string, key models.Row) error
}

// ClientSyncJob is a background worker that periodically runs a sync
// attempt for the logged-in user.
type ClientSyncJob interface {
	// Start launches the background goroutine syncing every interval
	// (default 5 minutes when interval is not positive). Any previously
	// running job is stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the goroutine to exit and blocks until it has.
	Stop()
}
