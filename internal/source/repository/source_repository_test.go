package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
	cryptoService "github.com/allisson/relay/internal/crypto/service"
	"github.com/allisson/relay/internal/database"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
	"github.com/allisson/relay/internal/testutil"
)

type sourceRepository interface {
	Create(ctx context.Context, source *sourceDomain.Source) error
	Update(ctx context.Context, source *sourceDomain.Source) error
	Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)
	GetForUpdate(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)
	List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error)
}

func newSecretBox(t *testing.T) *cryptoService.SecretBox {
	t.Helper()
	key, err := cryptoDomain.NewEncryptionKey(cryptoDomain.AESGCM, make([]byte, 32))
	require.NoError(t, err)
	box, err := cryptoService.NewSecretBox(key)
	require.NoError(t, err)
	return box
}

func newRepository(db *sql.DB, dialect string, encryptor cryptoService.Encryptor) sourceRepository {
	switch dialect {
	case database.DialectPostgreSQL:
		return NewPostgreSQLSourceRepository(db, encryptor)
	case database.DialectMySQL:
		return NewMySQLSourceRepository(db, encryptor)
	default:
		return NewSQLiteSourceRepository(db, encryptor)
	}
}

func newSource(name string) *sourceDomain.Source {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &sourceDomain.Source{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		IsActive:  true,
		IsSecured: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func strPtr(s string) *string { return &s }

var dialects = []string{database.DialectSQLite, database.DialectPostgreSQL, database.DialectMySQL}

func TestSourceRepository_CreateAndGet(t *testing.T) {
	for _, dialect := range dialects {
		t.Run(dialect, func(t *testing.T) {
			db := testutil.SetupDB(t, dialect)
			repo := newRepository(db, dialect, newSecretBox(t))
			ctx := context.Background()

			source := newSource("github")
			now := source.CreatedAt
			source.PrimaryKey = strPtr("primary-key-value")
			source.SecondaryKey = strPtr("secondary-key-value")
			source.LastKeyRotationAt = &now

			require.NoError(t, repo.Create(ctx, source))

			got, err := repo.Get(ctx, source.ID)
			require.NoError(t, err)
			assert.Equal(t, source.ID, got.ID)
			assert.Equal(t, "github", got.Name)
			assert.True(t, got.IsActive)
			assert.True(t, got.IsSecured)
			require.NotNil(t, got.PrimaryKey)
			require.NotNil(t, got.SecondaryKey)
			assert.Equal(t, "primary-key-value", *got.PrimaryKey)
			assert.Equal(t, "secondary-key-value", *got.SecondaryKey)
			require.NotNil(t, got.LastKeyRotationAt)
			assert.WithinDuration(t, now, *got.LastKeyRotationAt, time.Second)
		})
	}
}

func TestSourceRepository_KeysAreEncryptedAtRest(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewSQLiteSourceRepository(db, newSecretBox(t))
	ctx := context.Background()

	source := newSource("stripe")
	source.PrimaryKey = strPtr("plaintext-primary")
	require.NoError(t, repo.Create(ctx, source))

	var stored sql.NullString
	err := db.QueryRowContext(ctx, `SELECT primary_key_ciphertext FROM sources WHERE id = ?`, source.ID.String()).
		Scan(&stored)
	require.NoError(t, err)
	require.True(t, stored.Valid)
	assert.NotContains(t, stored.String, "plaintext-primary")
}

func TestSourceRepository_CiphertextBoundToRow(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewSQLiteSourceRepository(db, newSecretBox(t))
	ctx := context.Background()

	first := newSource("first")
	first.PrimaryKey = strPtr("first-primary")
	require.NoError(t, repo.Create(ctx, first))

	second := newSource("second")
	second.PrimaryKey = strPtr("second-primary")
	require.NoError(t, repo.Create(ctx, second))

	_, err := db.ExecContext(ctx, `UPDATE sources SET primary_key_ciphertext =
		(SELECT primary_key_ciphertext FROM sources WHERE id = ?) WHERE id = ?`,
		first.ID.String(), second.ID.String())
	require.NoError(t, err)

	_, err = repo.Get(ctx, second.ID)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}

func TestSourceRepository_GetNotFound(t *testing.T) {
	for _, dialect := range dialects {
		t.Run(dialect, func(t *testing.T) {
			db := testutil.SetupDB(t, dialect)
			repo := newRepository(db, dialect, newSecretBox(t))

			_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
			assert.ErrorIs(t, err, sourceDomain.ErrSourceNotFound)
		})
	}
}

func TestSourceRepository_Update(t *testing.T) {
	for _, dialect := range dialects {
		t.Run(dialect, func(t *testing.T) {
			db := testutil.SetupDB(t, dialect)
			repo := newRepository(db, dialect, newSecretBox(t))
			ctx := context.Background()

			source := newSource("github")
			source.PrimaryKey = strPtr("old-primary")
			require.NoError(t, repo.Create(ctx, source))

			source.Name = "github-enterprise"
			source.IsActive = false
			source.SecondaryKey = source.PrimaryKey
			source.PrimaryKey = strPtr("new-primary")
			source.UpdatedAt = source.UpdatedAt.Add(time.Minute)
			require.NoError(t, repo.Update(ctx, source))

			got, err := repo.Get(ctx, source.ID)
			require.NoError(t, err)
			assert.Equal(t, "github-enterprise", got.Name)
			assert.False(t, got.IsActive)
			assert.Equal(t, "new-primary", *got.PrimaryKey)
			assert.Equal(t, "old-primary", *got.SecondaryKey)
		})
	}
}

func TestSourceRepository_UpdateNotFound(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewSQLiteSourceRepository(db, newSecretBox(t))

	err := repo.Update(context.Background(), newSource("missing"))
	assert.ErrorIs(t, err, sourceDomain.ErrSourceNotFound)
}

func TestSourceRepository_GetForUpdateInTransaction(t *testing.T) {
	for _, dialect := range dialects {
		t.Run(dialect, func(t *testing.T) {
			db := testutil.SetupDB(t, dialect)
			repo := newRepository(db, dialect, newSecretBox(t))
			txManager := database.NewTxManager(db)
			ctx := context.Background()

			source := newSource("github")
			require.NoError(t, repo.Create(ctx, source))

			err := txManager.WithTx(ctx, func(ctx context.Context) error {
				locked, err := repo.GetForUpdate(ctx, source.ID)
				if err != nil {
					return err
				}
				locked.Name = "renamed"
				return repo.Update(ctx, locked)
			})
			require.NoError(t, err)

			got, err := repo.Get(ctx, source.ID)
			require.NoError(t, err)
			assert.Equal(t, "renamed", got.Name)
		})
	}
}

func TestSourceRepository_List(t *testing.T) {
	for _, dialect := range dialects {
		t.Run(dialect, func(t *testing.T) {
			db := testutil.SetupDB(t, dialect)
			repo := newRepository(db, dialect, newSecretBox(t))
			ctx := context.Background()

			var ids []uuid.UUID
			for _, name := range []string{"a", "b", "c"} {
				source := newSource(name)
				require.NoError(t, repo.Create(ctx, source))
				ids = append(ids, source.ID)
			}

			all, err := repo.List(ctx, 0, 10)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, ids[2], all[0].ID)
			assert.Equal(t, ids[0], all[2].ID)

			page, err := repo.List(ctx, 1, 1)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, ids[1], page[0].ID)
		})
	}
}
