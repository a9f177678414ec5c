// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/ykarpov/go-vault-sync/models"
)

// vaultCipherService is the private implementation of [VaultCipherService].
type vaultCipherService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewVaultCipherService constructs a [VaultCipherService] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewVaultCipherService() VaultCipherService {
	return &vaultCipherService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// GenerateSalt implements [VaultCipherService]. It reads 16 random bytes
// from the OS CSPRNG. Returns an error if the random read fails.
func (v *vaultCipherService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey implements [VaultCipherService].
func (v *vaultCipherService) DeriveKey(masterPassword string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(masterPassword),
		salt,
		v.argonTime,
		v.argonMemory,
		v.argonThreads,
		v.argonKeyLen,
	)
}

// AuthHash implements [VaultCipherService]. It computes
// SHA-256(key ‖ authSalt); the fixed authSalt keeps the verifier and the
// vault key domain-separated even though both derive from the same secret.
func (v *vaultCipherService) AuthHash(key []byte, authSalt string) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write([]byte(authSalt))
	return h.Sum(nil)
}

// EncryptSnapshot implements [VaultCipherService]. A random 12-byte nonce
// is prepended to the ciphertext so the decryption side can locate it:
// blob = nonce ‖ ciphertext.
func (v *vaultCipherService) EncryptSnapshot(snapshot models.Snapshot, key []byte) ([]byte, error) {
	plaintext, err := snapshot.Encode()
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// DecryptSnapshot implements [VaultCipherService]. An authentication-tag
// mismatch almost always means the key was derived from the wrong master
// password (or the password changed elsewhere); that case surfaces as
// [ErrDecryptFailure] so callers can escalate instead of retrying.
func (v *vaultCipherService) DecryptSnapshot(blob, key []byte) (models.Snapshot, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return models.Snapshot{}, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return models.Snapshot{}, fmt.Errorf("blob shorter than nonce: %w", ErrDecryptFailure)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("open vault blob: %w", ErrDecryptFailure)
	}

	snapshot, err := models.DecodeSnapshot(plaintext)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("decode decrypted snapshot: %w", err)
	}
	return snapshot, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
