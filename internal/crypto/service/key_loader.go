package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
)

// KeyConfig describes where the process encryption key comes from.
type KeyConfig struct {
	Algorithm  string
	HexKey     string
	KMSKeyURI  string
	WrappedKey string
}

// LoadEncryptionKey builds the process encryption key. A KMS-wrapped key takes
// precedence over a plain hex key.
func LoadEncryptionKey(ctx context.Context, cfg KeyConfig, kms KMSService) (*cryptoDomain.EncryptionKey, error) {
	alg, err := cryptoDomain.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	if cfg.WrappedKey == "" {
		return cryptoDomain.ParseEncryptionKey(alg, cfg.HexKey)
	}
	if cfg.KMSKeyURI == "" {
		return nil, fmt.Errorf("%w: KMS key URI is required to unwrap the encryption key", cryptoDomain.ErrEncryptionKeyNotSet)
	}

	raw, err := kms.UnwrapKey(ctx, cfg.KMSKeyURI, cfg.WrappedKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(raw)

	return cryptoDomain.NewEncryptionKey(alg, raw)
}

// GenerateEncryptionKey returns a new random key of the largest size the
// algorithm accepts, hex encoded.
func GenerateEncryptionKey(alg cryptoDomain.Algorithm) (string, []byte, error) {
	sizes := alg.KeySizes()
	if len(sizes) == 0 {
		return "", nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	key := make([]byte, sizes[len(sizes)-1])
	if _, err := rand.Read(key); err != nil {
		return "", nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return hex.EncodeToString(key), key, nil
}
