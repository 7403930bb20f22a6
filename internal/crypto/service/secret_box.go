package service

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
)

// SecretBox encrypts secrets into the storage wire format
// base64(nonce[12] || ciphertext || tag[16]).
//
// The layout is fixed: changing the nonce or tag length makes previously stored
// values undecryptable and needs a new, versioned format.
type SecretBox struct {
	aead AEAD
}

// NewSecretBox builds a SecretBox from the process encryption key.
func NewSecretBox(key *cryptoDomain.EncryptionKey) (*SecretBox, error) {
	aead, err := NewAEAD(key)
	if err != nil {
		return nil, err
	}
	return &SecretBox{aead: aead}, nil
}

// Encrypt seals plaintext and returns the base64 wire format. aad, when set, must be
// presented again to Decrypt.
func (s *SecretBox) Encrypt(plaintext, aad []byte) (string, error) {
	ciphertext, nonce, err := s.aead.Encrypt(plaintext, aad)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, len(nonce)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt parses the wire format and opens it. Malformed input returns
// ErrInvalidCiphertext; any tampering with nonce, ciphertext or tag returns
// ErrDecryptionFailed and no plaintext.
func (s *SecretBox) Decrypt(encoded string, aad []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidCiphertext, err)
	}
	if len(raw) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than nonce and tag", cryptoDomain.ErrInvalidCiphertext, len(raw))
	}

	nonce := raw[:cryptoDomain.NonceSize]
	ciphertext := raw[cryptoDomain.NonceSize:]

	plaintext, err := s.aead.Decrypt(ciphertext, nonce, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
