package service

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
	apperrors "github.com/allisson/relay/internal/errors"
)

func newTestKey(t *testing.T, alg cryptoDomain.Algorithm, size int) *cryptoDomain.EncryptionKey {
	t.Helper()
	raw := make([]byte, size)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	key, err := cryptoDomain.NewEncryptionKey(alg, raw)
	require.NoError(t, err)
	return key
}

func TestSecretBox_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  *cryptoDomain.EncryptionKey
	}{
		{name: "aes-128-gcm", key: newTestKey(t, cryptoDomain.AESGCM, 16)},
		{name: "aes-256-gcm", key: newTestKey(t, cryptoDomain.AESGCM, 32)},
		{name: "chacha20-poly1305", key: newTestKey(t, cryptoDomain.ChaCha20, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, err := NewSecretBox(tt.key)
			require.NoError(t, err)

			encoded, err := box.Encrypt([]byte("hello"), nil)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			assert.Len(t, raw, cryptoDomain.NonceSize+len("hello")+cryptoDomain.TagSize)

			plaintext, err := box.Decrypt(encoded, nil)
			require.NoError(t, err)
			assert.Equal(t, "hello", string(plaintext))
		})
	}
}

func TestSecretBox_FreshNoncePerCall(t *testing.T) {
	box, err := NewSecretBox(newTestKey(t, cryptoDomain.AESGCM, 32))
	require.NoError(t, err)

	first, err := box.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)
	second, err := box.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSecretBox_EveryBitFlipFailsAuthentication(t *testing.T) {
	box, err := NewSecretBox(newTestKey(t, cryptoDomain.AESGCM, 32))
	require.NoError(t, err)

	encoded, err := box.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	for i := 0; i < len(raw)*8; i++ {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i/8] ^= 1 << (i % 8)

		plaintext, err := box.Decrypt(base64.StdEncoding.EncodeToString(tampered), nil)
		require.Error(t, err, "bit %d", i)
		assert.Nil(t, plaintext, "bit %d", i)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed, "bit %d", i)
		assert.ErrorIs(t, err, apperrors.ErrAuthenticationFailed, "bit %d", i)
	}
}

func TestSecretBox_Decrypt_Errors(t *testing.T) {
	box, err := NewSecretBox(newTestKey(t, cryptoDomain.AESGCM, 32))
	require.NoError(t, err)

	t.Run("invalid base64", func(t *testing.T) {
		_, err := box.Decrypt("not base64!", nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCiphertext)
	})

	t.Run("shorter than nonce and tag", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, cryptoDomain.NonceSize+cryptoDomain.TagSize-1))
		_, err := box.Decrypt(short, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCiphertext)
		assert.NotErrorIs(t, err, apperrors.ErrAuthenticationFailed)
	})

	t.Run("different key", func(t *testing.T) {
		encoded, err := box.Encrypt([]byte("hello"), nil)
		require.NoError(t, err)

		other, err := NewSecretBox(newTestKey(t, cryptoDomain.AESGCM, 16))
		require.NoError(t, err)
		_, err = other.Decrypt(encoded, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("mismatched associated data", func(t *testing.T) {
		encoded, err := box.Encrypt([]byte("hello"), []byte("source-a"))
		require.NoError(t, err)

		_, err = box.Decrypt(encoded, []byte("source-b"))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

		plaintext, err := box.Decrypt(encoded, []byte("source-a"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(plaintext))
	})
}

func TestNewAEAD(t *testing.T) {
	t.Run("aes-gcm", func(t *testing.T) {
		aead, err := NewAEAD(newTestKey(t, cryptoDomain.AESGCM, 24))
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, aead)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		aead, err := NewAEAD(newTestKey(t, cryptoDomain.ChaCha20, 32))
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, aead)
	})

	t.Run("nil key", func(t *testing.T) {
		_, err := NewAEAD(nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionKeyNotSet)
	})

	t.Run("closed key", func(t *testing.T) {
		key := newTestKey(t, cryptoDomain.AESGCM, 32)
		key.Close()
		_, err := NewAEAD(key)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionKeyNotSet)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := NewAEAD(&cryptoDomain.EncryptionKey{Algorithm: "rot13", Key: make([]byte, 32)})
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("key size mismatch", func(t *testing.T) {
		_, err := NewAEAD(&cryptoDomain.EncryptionKey{Algorithm: cryptoDomain.ChaCha20, Key: make([]byte, 16)})
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestGenerateEncryptionKey(t *testing.T) {
	hexKey, raw, err := GenerateEncryptionKey(cryptoDomain.AESGCM)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Len(t, hexKey, 64)

	key, err := cryptoDomain.ParseEncryptionKey(cryptoDomain.AESGCM, hexKey)
	require.NoError(t, err)
	assert.Equal(t, raw, key.Key)

	other, _, err := GenerateEncryptionKey(cryptoDomain.AESGCM)
	require.NoError(t, err)
	assert.NotEqual(t, hexKey, other)

	_, _, err = GenerateEncryptionKey("rot13")
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}

func TestLoadEncryptionKey_Plain(t *testing.T) {
	key, err := LoadEncryptionKey(t.Context(), KeyConfig{
		Algorithm: "aes-gcm",
		HexKey:    strings.Repeat("01", 32),
	}, NewKMSService())
	require.NoError(t, err)
	assert.Equal(t, cryptoDomain.AESGCM, key.Algorithm)
	assert.Len(t, key.Key, 32)

	_, err = LoadEncryptionKey(t.Context(), KeyConfig{Algorithm: "aes-gcm"}, NewKMSService())
	assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionKeyNotSet)

	_, err = LoadEncryptionKey(t.Context(), KeyConfig{Algorithm: "des", HexKey: "00"}, NewKMSService())
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}
