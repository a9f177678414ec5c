package crypto

import "errors"

// ErrDecryptFailure marks a blob that cannot be opened with the supplied
// key: wrong master password, a key rotated elsewhere, or a corrupted blob
// (authentication-tag mismatch). Never retried with the same inputs.
var ErrDecryptFailure = errors.New("vault blob decrypt failure")
