package domain

import (
	"context"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// EncryptionKey is the process-wide symmetric key used to encrypt secrets at rest.
//
// It is built once at startup and handed by pointer to every component that
// encrypts, so tests can inject their own key. Call Close on shutdown to wipe
// the key material.
type EncryptionKey struct {
	Algorithm Algorithm
	Key       []byte
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap a KMS-protected key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// NewEncryptionKey validates the key length for the algorithm and copies the key.
func NewEncryptionKey(alg Algorithm, key []byte) (*EncryptionKey, error) {
	sizes := alg.KeySizes()
	if sizes == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	if !slices.Contains(sizes, len(key)) {
		return nil, fmt.Errorf("%w: %s accepts %v bytes, got %d", ErrInvalidKeySize, alg, sizes, len(key))
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &EncryptionKey{Algorithm: alg, Key: k}, nil
}

// ParseEncryptionKey decodes a hex encoded key and validates it for the algorithm.
// The decoded buffer is zeroed before returning.
func ParseEncryptionKey(alg Algorithm, hexKey string) (*EncryptionKey, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	defer Zero(raw)

	return NewEncryptionKey(alg, raw)
}

// Close wipes the key material.
func (k *EncryptionKey) Close() {
	if k == nil {
		return
	}
	Zero(k.Key)
	k.Key = nil
}

// Zero overwrites b with zeros. Callers use it on decoded or unwrapped key
// buffers once they have been copied into an EncryptionKey.
func Zero(b []byte) {
	clear(b)
}
