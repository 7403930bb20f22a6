package domain

import "fmt"

// Algorithm identifies the AEAD used to encrypt secrets at rest.
type Algorithm string

const (
	// AESGCM is AES in Galois/Counter Mode with a 96-bit nonce and 128-bit tag.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305 with a 96-bit nonce and 128-bit tag.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// NonceSize is the nonce length prepended to every ciphertext.
	NonceSize = 12
	// TagSize is the authentication tag length appended by the AEAD.
	TagSize = 16
)

// ParseAlgorithm converts a configuration value into an Algorithm.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch Algorithm(value) {
	case AESGCM, ChaCha20:
		return Algorithm(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, value)
	}
}

// KeySizes returns the accepted key lengths in bytes for the algorithm.
func (a Algorithm) KeySizes() []int {
	switch a {
	case AESGCM:
		return []int{16, 24, 32}
	case ChaCha20:
		return []int{32}
	default:
		return nil
	}
}
