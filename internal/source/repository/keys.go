// Package repository implements Source persistence for PostgreSQL, MySQL and SQLite.
//
// Keys never reach the database in plaintext: each slot is sealed with the
// process SecretBox and bound to the source ID and slot name as associated data,
// so a ciphertext copied to another row or slot fails to decrypt.
package repository

import (
	"github.com/google/uuid"

	cryptoService "github.com/allisson/relay/internal/crypto/service"
	apperrors "github.com/allisson/relay/internal/errors"
)

const sourceColumns = `id, name, is_active, is_secured, primary_key_ciphertext, secondary_key_ciphertext,
	last_key_rotation_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	primarySlot   = "primary"
	secondarySlot = "secondary"
)

type keySealer struct {
	encryptor cryptoService.Encryptor
}

func keyAAD(sourceID uuid.UUID, slot string) []byte {
	return []byte(sourceID.String() + ":" + slot)
}

func (k keySealer) seal(sourceID uuid.UUID, slot string, key *string) (*string, error) {
	if key == nil {
		return nil, nil
	}
	ciphertext, err := k.encryptor.Encrypt([]byte(*key), keyAAD(sourceID, slot))
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to encrypt %s key", slot)
	}
	return &ciphertext, nil
}

func (k keySealer) open(sourceID uuid.UUID, slot string, ciphertext *string) (*string, error) {
	if ciphertext == nil {
		return nil, nil
	}
	plaintext, err := k.encryptor.Decrypt(*ciphertext, keyAAD(sourceID, slot))
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt %s key", slot)
	}
	key := string(plaintext)
	return &key, nil
}

// sealKeys returns the primary and secondary ciphertexts for a source.
func (k keySealer) sealKeys(sourceID uuid.UUID, primary, secondary *string) (*string, *string, error) {
	sealedPrimary, err := k.seal(sourceID, primarySlot, primary)
	if err != nil {
		return nil, nil, err
	}
	sealedSecondary, err := k.seal(sourceID, secondarySlot, secondary)
	if err != nil {
		return nil, nil, err
	}
	return sealedPrimary, sealedSecondary, nil
}

// openKeys decrypts the primary and secondary ciphertexts of a source.
func (k keySealer) openKeys(sourceID uuid.UUID, primary, secondary *string) (*string, *string, error) {
	openedPrimary, err := k.open(sourceID, primarySlot, primary)
	if err != nil {
		return nil, nil, err
	}
	openedSecondary, err := k.open(sourceID, secondarySlot, secondary)
	if err != nil {
		return nil, nil, err
	}
	return openedPrimary, openedSecondary, nil
}
