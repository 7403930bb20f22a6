package service

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestOpenKeeper(t *testing.T) {
	ctx := t.Context()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

func TestKMSService_WrapUnwrap(t *testing.T) {
	ctx := t.Context()
	kms := NewKMSService()
	keyURI := generateLocalSecretsURI(t)

	_, raw, err := GenerateEncryptionKey(cryptoDomain.ChaCha20)
	require.NoError(t, err)

	wrapped, err := kms.WrapKey(ctx, keyURI, raw)
	require.NoError(t, err)
	assert.NotEqual(t, base64.StdEncoding.EncodeToString(raw), wrapped)

	unwrapped, err := kms.UnwrapKey(ctx, keyURI, wrapped)
	require.NoError(t, err)
	assert.Equal(t, raw, unwrapped)

	t.Run("Error_WrongKeeper", func(t *testing.T) {
		_, err := kms.UnwrapKey(ctx, generateLocalSecretsURI(t), wrapped)
		assert.ErrorContains(t, err, "failed to unwrap encryption key")
	})

	t.Run("Error_NotBase64", func(t *testing.T) {
		_, err := kms.UnwrapKey(ctx, keyURI, "%%%")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeyEncoding)
	})

	t.Run("LoadEncryptionKey_PrefersWrappedKey", func(t *testing.T) {
		key, err := LoadEncryptionKey(ctx, KeyConfig{
			Algorithm:  "chacha20-poly1305",
			HexKey:     "ignored",
			KMSKeyURI:  keyURI,
			WrappedKey: wrapped,
		}, kms)
		require.NoError(t, err)
		assert.Equal(t, raw, key.Key)
	})

	t.Run("LoadEncryptionKey_WrappedKeyWithoutURI", func(t *testing.T) {
		_, err := LoadEncryptionKey(ctx, KeyConfig{
			Algorithm:  "chacha20-poly1305",
			WrappedKey: wrapped,
		}, kms)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionKeyNotSet)
	})
}
