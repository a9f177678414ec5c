package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/vault_cipher_mock.go -package=mock

import "github.com/ykarpov/go-vault-sync/models"

// VaultCipherService is the client-side cryptography boundary of the sync
// engine. It knows nothing about the network, the local store, or users;
// its only job is turning plaintext snapshots into opaque blobs and back.
//
// Key schema:
//
//	salt = GenerateSalt()                    (stored server-side, public)
//	key  = DeriveKey(masterPassword, salt)   (client memory only)
//	hash = AuthHash(key, authSalt)           (login verifier for the server)
type VaultCipherService interface {
	// GenerateSalt produces a random 16-byte salt. The salt is not a
	// secret; the server serves it back via the status endpoint so a
	// client can derive its key before authenticating.
	GenerateSalt() ([]byte, error)

	// DeriveKey derives the 256-bit vault key from the master password and
	// salt via Argon2id. The key exists only in client memory and is never
	// transmitted.
	DeriveKey(masterPassword string, salt []byte) []byte

	// AuthHash computes the login verifier: SHA-256(key ‖ authSalt). The
	// fixed authSalt domain-separates the verifier from the vault key, so
	// the server can check it without being able to decrypt anything.
	AuthHash(key []byte, authSalt string) []byte

	// EncryptSnapshot serializes the snapshot to its canonical plaintext
	// and seals it with AES-256-GCM: blob = nonce ‖ ciphertext. The result
	// is safe to store anywhere.
	EncryptSnapshot(snapshot models.Snapshot, key []byte) ([]byte, error)

	// DecryptSnapshot opens a blob produced by EncryptSnapshot and decodes
	// the snapshot. A wrong key or corrupted blob returns an error wrapping
	// [ErrDecryptFailure] — the signal the sync coordinator escalates as
	// "wrong key" instead of attempting a merge.
	DecryptSnapshot(blob, key []byte) (models.Snapshot, error)
}
