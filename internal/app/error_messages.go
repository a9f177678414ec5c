// SPDX-License-Identifier: Apache-2.0

// Package app contains shared application-layer constants used across the
// vault sync server handlers and the client error mapping.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies to describe the outcome of an operation. Keeping them in
// one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails basic validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the supplied credentials do
	// not match any existing user record.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoUserIDProvided is returned when a handler requires a user ID
	// (extracted from the JWT claim) but none is present in the request
	// context.
	MsgNoUserIDProvided = "no user ID provided"

	// MsgLoginAlreadyExists is returned when a registration attempt is
	// rejected because the requested login is already in use.
	MsgLoginAlreadyExists = "login already exists"

	// MsgRegistrationFailed is returned when the registration handler
	// encounters an unexpected error that prevents account creation.
	MsgRegistrationFailed = "registration failed"

	// MsgLoginFailed is returned when the login handler encounters an
	// unexpected error that prevents issuing a session token.
	MsgLoginFailed = "login failed"

	// MsgVaultNotFound is returned when a download targets a user who has
	// never saved a vault.
	MsgVaultNotFound = "vault not found"

	// MsgVaultOutdated accompanies a 409 response to a save whose claimed
	// revision lost the compare-and-swap. The response body carries the
	// server's actual latest revision.
	MsgVaultOutdated = "vault revision outdated"
)
