package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequenceGenerator(keys ...string) KeyGenerator {
	i := 0
	return func() (string, error) {
		if i >= len(keys) {
			return "", errors.New("sequence exhausted")
		}
		key := keys[i]
		i++
		return key, nil
	}
}

func TestGenerateKey(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		key, err := GenerateKey()
		require.NoError(t, err)
		assert.Len(t, key, KeyLength)
		assert.NotContains(t, seen, key)
		seen[key] = struct{}{}
	}
}

func TestSource_SetupNewKeys(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Success_TwoDistinctKeys", func(t *testing.T) {
		source := &Source{}
		assert.False(t, source.HasAnyKeysSetup())

		require.NoError(t, source.SetupNewKeys(GenerateKey, now))

		require.NotNil(t, source.PrimaryKey)
		require.NotNil(t, source.SecondaryKey)
		assert.NotEqual(t, *source.PrimaryKey, *source.SecondaryKey)
		assert.True(t, source.HasAnyKeysSetup())
		assert.Equal(t, now, *source.LastKeyRotationAt)
		assert.Equal(t, now, source.UpdatedAt)
	})

	t.Run("Success_RegeneratesDuplicateSecondary", func(t *testing.T) {
		source := &Source{}
		require.NoError(t, source.SetupNewKeys(sequenceGenerator("a", "a", "b"), now))
		assert.Equal(t, "a", *source.PrimaryKey)
		assert.Equal(t, "b", *source.SecondaryKey)
	})

	t.Run("Success_ReplacesExistingKeys", func(t *testing.T) {
		p, s := "old-primary", "old-secondary"
		source := &Source{PrimaryKey: &p, SecondaryKey: &s}
		require.NoError(t, source.SetupNewKeys(sequenceGenerator("new-1", "new-2"), now))
		assert.Equal(t, "new-1", *source.PrimaryKey)
		assert.Equal(t, "new-2", *source.SecondaryKey)
		assert.False(t, source.Authenticate("old-primary"))
	})

	t.Run("Error_GeneratorFailure", func(t *testing.T) {
		source := &Source{}
		err := source.SetupNewKeys(func() (string, error) {
			return "", fmt.Errorf("%w: entropy exhausted", ErrKeyGenerationFailed)
		}, now)
		assert.ErrorIs(t, err, ErrKeyGenerationFailed)
		assert.False(t, source.HasAnyKeysSetup())
	})
}

func TestSource_RotateKeys(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Success_PrimaryBecomesSecondary", func(t *testing.T) {
		source := &Source{}
		require.NoError(t, source.SetupNewKeys(sequenceGenerator("P1", "S1"), now))

		later := now.Add(time.Hour)
		require.NoError(t, source.RotateKeys(sequenceGenerator("P2"), later))

		assert.Equal(t, "P2", *source.PrimaryKey)
		assert.Equal(t, "P1", *source.SecondaryKey)
		assert.Equal(t, later, *source.LastKeyRotationAt)
		assert.True(t, source.Authenticate("P1"))
		assert.True(t, source.Authenticate("P2"))
		assert.False(t, source.Authenticate("S1"))

		require.NoError(t, source.RotateKeys(sequenceGenerator("P3"), later.Add(time.Hour)))
		assert.False(t, source.Authenticate("P1"))
		assert.True(t, source.Authenticate("P2"))
		assert.True(t, source.Authenticate("P3"))
	})

	t.Run("Success_NewPrimaryDiffersFromPrevious", func(t *testing.T) {
		p := "P1"
		source := &Source{PrimaryKey: &p}
		require.NoError(t, source.RotateKeys(sequenceGenerator("P1", "P2"), now))
		assert.Equal(t, "P2", *source.PrimaryKey)
		assert.Equal(t, "P1", *source.SecondaryKey)
	})

	t.Run("Policy_RotateWithoutKeysLeavesSecondaryEmpty", func(t *testing.T) {
		source := &Source{}
		require.NoError(t, source.RotateKeys(sequenceGenerator("P1"), now))

		require.NotNil(t, source.PrimaryKey)
		assert.Equal(t, "P1", *source.PrimaryKey)
		assert.Nil(t, source.SecondaryKey)
		assert.True(t, source.HasAnyKeysSetup())
		assert.True(t, source.Authenticate("P1"))
	})

	t.Run("Error_GeneratorStuck", func(t *testing.T) {
		p := "P1"
		source := &Source{PrimaryKey: &p}
		err := source.RotateKeys(sequenceGenerator("P1", "P1", "P1"), now)
		assert.ErrorIs(t, err, ErrKeyGenerationFailed)
		assert.Equal(t, "P1", *source.PrimaryKey)
		assert.Nil(t, source.SecondaryKey)
	})
}

func TestSource_Authenticate(t *testing.T) {
	p, s := "primary-key-value-0001", "secondary-key-value-01"

	tests := []struct {
		name      string
		source    Source
		presented string
		expected  bool
	}{
		{name: "primary", source: Source{PrimaryKey: &p, SecondaryKey: &s}, presented: p, expected: true},
		{name: "secondary", source: Source{PrimaryKey: &p, SecondaryKey: &s}, presented: s, expected: true},
		{name: "neither", source: Source{PrimaryKey: &p, SecondaryKey: &s}, presented: "other", expected: false},
		{name: "prefix of primary", source: Source{PrimaryKey: &p}, presented: p[:10], expected: false},
		{name: "empty presented", source: Source{PrimaryKey: &p}, presented: "", expected: false},
		{name: "no keys", source: Source{}, presented: p, expected: false},
		{name: "only secondary", source: Source{SecondaryKey: &s}, presented: s, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.source.Authenticate(tt.presented))
		})
	}
}
