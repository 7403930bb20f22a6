package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
	cryptoService "github.com/allisson/relay/internal/crypto/service"
)

type cryptoComponents struct {
	kmsService    cryptoService.KMSService
	encryptionKey *cryptoDomain.EncryptionKey
	secretBox     *cryptoService.SecretBox

	kmsServiceInit    sync.Once
	encryptionKeyInit sync.Once
	secretBoxInit     sync.Once
}

// KMSService returns the KMS service used to unwrap the encryption key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.crypto.kmsServiceInit.Do(func() {
		c.crypto.kmsService = cryptoService.NewKMSService()
	})
	return c.crypto.kmsService
}

// EncryptionKey returns the process encryption key, loaded once from
// configuration and unwrapped through KMS when a wrapped key is configured.
func (c *Container) EncryptionKey() (*cryptoDomain.EncryptionKey, error) {
	var err error
	c.crypto.encryptionKeyInit.Do(func() {
		c.crypto.encryptionKey, err = c.initEncryptionKey()
		if err != nil {
			c.initErrors["encryptionKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionKey"]; exists {
		return nil, storedErr
	}
	return c.crypto.encryptionKey, nil
}

// SecretBox returns the encryptor used for source keys at rest.
func (c *Container) SecretBox() (*cryptoService.SecretBox, error) {
	var err error
	c.crypto.secretBoxInit.Do(func() {
		c.crypto.secretBox, err = c.initSecretBox()
		if err != nil {
			c.initErrors["secretBox"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretBox"]; exists {
		return nil, storedErr
	}
	return c.crypto.secretBox, nil
}

func (c *Container) initEncryptionKey() (*cryptoDomain.EncryptionKey, error) {
	key, err := cryptoService.LoadEncryptionKey(
		context.Background(),
		cryptoService.KeyConfig{
			Algorithm:  c.config.EncryptionAlgorithm,
			HexKey:     c.config.EncryptionKey,
			KMSKeyURI:  c.config.EncryptionKMSKeyURI,
			WrappedKey: c.config.EncryptionKMSWrappedKey,
		},
		c.KMSService(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}
	return key, nil
}

func (c *Container) initSecretBox() (*cryptoService.SecretBox, error) {
	key, err := c.EncryptionKey()
	if err != nil {
		return nil, err
	}
	box, err := cryptoService.NewSecretBox(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret box: %w", err)
	}
	return box, nil
}
