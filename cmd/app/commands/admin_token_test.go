package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdminTokenService struct {
	mock.Mock
}

func (m *MockAdminTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAdminTokenService) HashToken(plainToken string) (string, error) {
	args := m.Called(plainToken)
	return args.String(0), args.Error(1)
}

func (m *MockAdminTokenService) VerifyToken(plainToken, hash string) bool {
	return m.Called(plainToken, hash).Bool(0)
}

func TestRunHashAdminToken(t *testing.T) {
	t.Run("hash-given-token", func(t *testing.T) {
		mockService := &MockAdminTokenService{}
		mockService.On("HashToken", "my-token").Return("$argon2id$hash", nil)

		var out bytes.Buffer
		err := RunHashAdminToken(mockService, &out, "my-token", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "ADMIN_TOKEN_HASH='$argon2id$hash'")
		require.NotContains(t, out.String(), "my-token")
		mockService.AssertExpectations(t)
	})

	t.Run("generate-json", func(t *testing.T) {
		mockService := &MockAdminTokenService{}
		mockService.On("GenerateToken").Return("generated", "$argon2id$hash", nil)

		var out bytes.Buffer
		err := RunHashAdminToken(mockService, &out, "", "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, "generated", result["admin_token"])
		require.Equal(t, "$argon2id$hash", result["admin_token_hash"])
		mockService.AssertExpectations(t)
	})

	t.Run("hash-error", func(t *testing.T) {
		mockService := &MockAdminTokenService{}
		mockService.On("HashToken", "my-token").Return("", errors.New("boom"))

		err := RunHashAdminToken(mockService, io.Discard, "my-token", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to hash admin token")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunHashAdminToken(&MockAdminTokenService{}, io.Discard, "my-token", "xml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})
}
