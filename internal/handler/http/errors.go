// SPDX-License-Identifier: Apache-2.0

package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with
// [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when the incoming request
	// does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is present
	// but carries no usable bearer token.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")
)
