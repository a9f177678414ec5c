// SPDX-License-Identifier: Apache-2.0

// Package validators enforces input rules at the application boundary,
// before values reach the service layer.
//
// A [Validator] checks an arbitrary value and may be scoped to a subset of
// named fields. Implementations live next to the input shapes they guard:
// [CredentialsValidator] for login material, [RowInputValidator] for vault
// row edits.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input
// values. Implementations may perform structural validation, semantic
// checks, cross-field rules.
type Validator interface {

	// Validate validates the provided input and optionally restricts
	// validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
