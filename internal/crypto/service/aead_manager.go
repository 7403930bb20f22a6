package service

import (
	"slices"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
)

// NewAEAD creates the cipher selected by the key's algorithm.
func NewAEAD(key *cryptoDomain.EncryptionKey) (AEAD, error) {
	if key == nil || len(key.Key) == 0 {
		return nil, cryptoDomain.ErrEncryptionKeyNotSet
	}
	if sizes := key.Algorithm.KeySizes(); sizes != nil && !slices.Contains(sizes, len(key.Key)) {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch key.Algorithm {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key.Key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key.Key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
