package validators

import (
	"context"
	"fmt"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldLogin targets the account login identifier.
	FieldLogin = "login"

	// FieldMasterPassword targets the master password the vault key is
	// derived from.
	FieldMasterPassword = "master_password"
)

// minMasterPasswordLength is the weakest master password accepted at
// registration. Login accepts anything; the server verifier decides.
const minMasterPasswordLength = 8

// Credentials is the raw login material collected from the user before any
// key derivation happens.
type Credentials struct {
	Login          string
	MasterPassword string
}

// CredentialsValidator implements [Validator] for [Credentials].
type CredentialsValidator struct{}

func NewCredentialsValidator() *CredentialsValidator {
	return &CredentialsValidator{}
}

// Validate checks the given [Credentials]. With no field names it validates
// everything; otherwise only the named fields.
func (v *CredentialsValidator) Validate(_ context.Context, value any, fields ...string) error {
	creds, ok := value.(Credentials)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}

	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldMasterPassword}
	}

	for _, field := range fields {
		switch field {
		case FieldLogin:
			if creds.Login == "" {
				return ErrEmptyLogin
			}
		case FieldMasterPassword:
			if len(creds.MasterPassword) < minMasterPasswordLength {
				return fmt.Errorf("%w: need at least %d characters", ErrMasterPasswordTooShort, minMasterPasswordLength)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}
