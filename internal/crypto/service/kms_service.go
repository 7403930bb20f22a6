package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperOpener opens a gocloud keeper for a key URI (awskms://, gcpkms://,
// azurekeyvault://, hashivault://, base64key://).
type KeeperOpener func(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

type kmsService struct {
	open KeeperOpener
}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{open: OpenKeeper}
}

// OpenKeeper opens a gocloud secrets keeper.
func OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

func (k *kmsService) UnwrapKey(ctx context.Context, keyURI, wrapped string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped key is not base64: %v", cryptoDomain.ErrInvalidKeyEncoding, err)
	}

	keeper, err := k.open(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap encryption key: %w", err)
	}
	return key, nil
}

func (k *kmsService) WrapKey(ctx context.Context, keyURI string, key []byte) (string, error) {
	keeper, err := k.open(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap encryption key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
