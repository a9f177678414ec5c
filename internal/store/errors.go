package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers match against these with [errors.Is].
var (
	// ErrLoginAlreadyExists is returned when registering a user fails
	// because the login is already taken.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a lookup expected to match a
	// user produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrLocalStateNotFound is returned by the client state repository
	// when no vault state has ever been persisted locally.
	ErrLocalStateNotFound = errors.New("local vault state not found")

	// ErrLocalSessionNotFound is returned by the client state repository
	// when no authentication session is stored.
	ErrLocalSessionNotFound = errors.New("local session not found")
)

// Low-level database operation errors. Repository methods wrap these when
// a SQL-level operation fails before any domain logic applies.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised
	// SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a read query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing fails. The
	// transaction is considered rolled back at that point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single result row into a
	// destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning during multi-row
	// iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
