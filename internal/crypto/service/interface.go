// Package service provides the symmetric encryption used for secrets at rest.
package service

import (
	"context"
)

// AEAD is an authenticated cipher that generates a fresh random nonce per call.
type AEAD interface {
	// Encrypt seals plaintext and returns the ciphertext (with tag) and the nonce used.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext sealed with nonce and aad.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// Encryptor encrypts values into their storage representation and back.
type Encryptor interface {
	// Encrypt returns base64(nonce || ciphertext || tag).
	Encrypt(plaintext, aad []byte) (string, error)

	// Decrypt reverses Encrypt. A tag mismatch yields ErrDecryptionFailed.
	Decrypt(encoded string, aad []byte) ([]byte, error)
}

// KMSService unwraps and wraps encryption keys with an external KMS.
type KMSService interface {
	// UnwrapKey decrypts a base64 KMS ciphertext into raw key bytes.
	UnwrapKey(ctx context.Context, keyURI, wrapped string) ([]byte, error)

	// WrapKey encrypts raw key bytes and returns the base64 KMS ciphertext.
	WrapKey(ctx context.Context, keyURI string, key []byte) (string, error)
}
