// Package domain defines the Source entity and its rotating credentials.
//
// A Source owns two authentication keys. Rotation moves the primary key into the
// secondary slot and issues a new primary, so callers still presenting the old
// key keep working until the next rotation.
package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// KeyEntropyBytes is the amount of random data behind every source key.
	KeyEntropyBytes = 16
	// KeyLength is the printable length of a source key (unpadded base64url of 16 bytes).
	KeyLength = 22

	maxKeyGenerationAttempts = 3
)

// KeyGenerator returns a new random source key.
type KeyGenerator func() (string, error)

// Source is an external event producer that can push events once authenticated.
type Source struct {
	ID                uuid.UUID
	Name              string
	IsActive          bool
	IsSecured         bool
	PrimaryKey        *string //nolint:gosec // plaintext only in memory, encrypted at rest
	SecondaryKey      *string //nolint:gosec // plaintext only in memory, encrypted at rest
	LastKeyRotationAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateSourceInput contains the operator supplied fields of a new source.
type CreateSourceInput struct {
	Name      string
	IsActive  bool
	IsSecured bool
}

// UpdateSourceInput contains the mutable fields of a source.
type UpdateSourceInput struct {
	Name      string
	IsActive  bool
	IsSecured bool
}

// GenerateKey returns KeyEntropyBytes of crypto/rand output as a KeyLength string.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyGenerationFailed, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HasAnyKeysSetup reports whether the source has a primary or a secondary key.
func (s *Source) HasAnyKeysSetup() bool {
	return s.PrimaryKey != nil || s.SecondaryKey != nil
}

// SetupNewKeys replaces both keys with two fresh, distinct keys.
func (s *Source) SetupNewKeys(gen KeyGenerator, now time.Time) error {
	primary, err := gen()
	if err != nil {
		return err
	}
	secondary, err := freshKey(gen, primary)
	if err != nil {
		return err
	}

	s.PrimaryKey = &primary
	s.SecondaryKey = &secondary
	s.LastKeyRotationAt = &now
	s.UpdatedAt = now
	return nil
}

// RotateKeys moves the primary key to the secondary slot and issues a new primary.
// The previous secondary is discarded. On a source without keys the result is a
// primary key with an empty secondary slot.
func (s *Source) RotateKeys(gen KeyGenerator, now time.Time) error {
	previous := ""
	if s.PrimaryKey != nil {
		previous = *s.PrimaryKey
	}

	primary, err := freshKey(gen, previous)
	if err != nil {
		return err
	}

	s.SecondaryKey = s.PrimaryKey
	s.PrimaryKey = &primary
	s.LastKeyRotationAt = &now
	s.UpdatedAt = now
	return nil
}

// Authenticate reports whether presented equals the primary or the secondary key.
// Both slots are always compared in constant time.
func (s *Source) Authenticate(presented string) bool {
	if presented == "" {
		return false
	}

	matched := 0
	for _, key := range []*string{s.PrimaryKey, s.SecondaryKey} {
		if key == nil {
			continue
		}
		matched |= subtle.ConstantTimeCompare([]byte(*key), []byte(presented))
	}
	return matched == 1
}

// freshKey generates a key different from previous.
func freshKey(gen KeyGenerator, previous string) (string, error) {
	for range maxKeyGenerationAttempts {
		key, err := gen()
		if err != nil {
			return "", err
		}
		if key == "" {
			return "", fmt.Errorf("%w: empty key", ErrKeyGenerationFailed)
		}
		if key != previous {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: generator kept returning the previous key", ErrKeyGenerationFailed)
}
