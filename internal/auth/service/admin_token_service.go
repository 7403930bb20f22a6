package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/relay/internal/errors"
)

const adminTokenBytes = 32

// adminTokenService implements AdminTokenService with Argon2id.
type adminTokenService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateToken creates a 32-byte random token, base64url encoded.
func (s *adminTokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, adminTokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate admin token")
	}

	plainToken := base64.RawURLEncoding.EncodeToString(randomBytes)

	tokenHash, err := s.HashToken(plainToken)
	if err != nil {
		return "", "", err
	}

	return plainToken, tokenHash, nil
}

// HashToken hashes a plain token using Argon2id.
func (s *adminTokenService) HashToken(plainToken string) (string, error) {
	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash admin token")
	}
	return tokenHash, nil
}

// VerifyToken compares a plain token against its hash in constant time.
func (s *adminTokenService) VerifyToken(plainToken string, tokenHash string) bool {
	if plainToken == "" || tokenHash == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(plainToken), tokenHash)
	if err != nil {
		return false
	}
	return ok
}

// NewAdminTokenService creates an AdminTokenService using the Moderate Argon2id policy.
func NewAdminTokenService() AdminTokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// only reachable with an invalid policy
		panic(err)
	}

	return &adminTokenService{
		hasher: hasher,
	}
}
