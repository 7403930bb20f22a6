package domain

import (
	"github.com/allisson/relay/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the configured algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the key length does not fit the algorithm.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyEncoding indicates the configured key is not valid hex.
	ErrInvalidKeyEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid key encoding")

	// ErrEncryptionKeyNotSet indicates neither a plain nor a KMS-wrapped key was configured.
	ErrEncryptionKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "encryption key not set")

	// ErrInvalidCiphertext indicates the stored value is not base64 or is too short
	// to hold a nonce and a tag.
	ErrInvalidCiphertext = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext")

	// ErrDecryptionFailed indicates the authentication tag did not verify: the
	// ciphertext or nonce was altered, or a different key was used.
	ErrDecryptionFailed = errors.Wrap(errors.ErrAuthenticationFailed, "decryption failed")
)
