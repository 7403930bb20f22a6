package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/relay/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("name: cannot be blank."))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name: cannot be blank.")
}

func TestUUID(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "valid v7", value: "0190a0b5-7c3e-7d42-8f7c-0d6f4b1d2a11", shouldErr: false},
		{name: "valid v4", value: "6ba7b810-9dad-41d1-80b4-00c04fd430c8", shouldErr: false},
		{name: "empty passes", value: "", shouldErr: false},
		{name: "nil uuid", value: "00000000-0000-0000-0000-000000000000", shouldErr: true},
		{name: "garbage", value: "source-1", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, UUID)
			if tt.shouldErr {
				assert.EqualError(t, err, "must be a valid UUID")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "simple", value: "slack-alerts", shouldErr: false},
		{name: "dots and underscores", value: "archive.s3_eu", shouldErr: false},
		{name: "leading digit", value: "2nd-webhook", shouldErr: false},
		{name: "leading dash", value: "-webhook", shouldErr: true},
		{name: "space", value: "slack alerts", shouldErr: true},
		{name: "slash", value: "team/alerts", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, Identifier)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "no whitespace", value: "github-webhooks", shouldErr: false},
		{name: "inner whitespace", value: "github webhooks", shouldErr: false},
		{name: "leading whitespace", value: " github", shouldErr: true},
		{name: "trailing whitespace", value: "github ", shouldErr: true},
		{name: "trailing tab", value: "github\t", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, NoWhitespace)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "valid", value: "stripe", shouldErr: false},
		{name: "only spaces", value: "   ", shouldErr: true},
		{name: "only newlines", value: "\n\n", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, NotBlank)
			if tt.shouldErr {
				assert.EqualError(t, err, "must not be blank")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
