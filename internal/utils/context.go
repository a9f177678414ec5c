// Package utils provides general-purpose helpers shared across the
// application: context keys, HTTP response writing, HTTP client
// construction, JWT generation and validation, and ID generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys. Using a dedicated type
// instead of a plain string prevents collisions with other packages that
// store string-keyed values in the same context.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key under which the authenticated user's identifier
// is stored in the request context by the auth middleware.
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext retrieves the user identifier placed in the context
// by the auth middleware. The ok flag is false when the value is missing
// or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
