package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT session token with convenience accessors for the auth
// flow. It embeds [jwt.Token] for low-level operations and
// [jwt.RegisteredClaims] for standard claim access.
type Token struct {
	// Token is the underlying JWT used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides the standard claim set (RFC 7519).
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token, ready
	// to be carried in an Authorization header or stored client-side.
	SignedString string `json:"-"`

	// UserID is the owner identifier parsed from the "sub" claim; a
	// server-side cache to avoid repeated string conversion.
	UserID int64 `json:"-"`
}

// GetUserID extracts the user identifier from the token's "sub" claim and
// parses it as a base-10 int64.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
