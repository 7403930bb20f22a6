package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/relay/internal/crypto/service"
	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// SQLiteSourceRepository implements Source persistence for SQLite. UUIDs are
// stored as TEXT. SQLite has a single writer, so GetForUpdate relies on the
// surrounding transaction instead of a row lock.
type SQLiteSourceRepository struct {
	db     *sql.DB
	sealer keySealer
}

// Create inserts a new source with its keys encrypted.
func (s *SQLiteSourceRepository) Create(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, s.db)

	primary, secondary, err := s.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO sources (` + sourceColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		source.ID.String(),
		source.Name,
		source.IsActive,
		source.IsSecured,
		primary,
		secondary,
		source.LastKeyRotationAt,
		source.CreatedAt,
		source.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create source")
	}
	return nil
}

// Update persists the mutable fields and keys of a source.
func (s *SQLiteSourceRepository) Update(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, s.db)

	primary, secondary, err := s.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `UPDATE sources
			  SET name = ?, is_active = ?, is_secured = ?, primary_key_ciphertext = ?,
				  secondary_key_ciphertext = ?, last_key_rotation_at = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		source.Name,
		source.IsActive,
		source.IsSecured,
		primary,
		secondary,
		source.LastKeyRotationAt,
		source.UpdatedAt,
		source.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update source")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return sourceDomain.ErrSourceNotFound
	}
	return nil
}

// Get retrieves a source by ID.
func (s *SQLiteSourceRepository) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = ?`

	var source sourceDomain.Source
	var primary, secondary *string

	err := querier.QueryRowContext(ctx, query, sourceID.String()).Scan(
		&source.ID,
		&source.Name,
		&source.IsActive,
		&source.IsSecured,
		&primary,
		&secondary,
		&source.LastKeyRotationAt,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sourceDomain.ErrSourceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get source")
	}

	source.PrimaryKey, source.SecondaryKey, err = s.sealer.openKeys(source.ID, primary, secondary)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// GetForUpdate retrieves a source within the current transaction.
func (s *SQLiteSourceRepository) GetForUpdate(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return s.Get(ctx, sourceID)
}

// List retrieves sources ordered by ID descending.
func (s *SQLiteSourceRepository) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sources")
	}
	defer func() {
		_ = rows.Close()
	}()

	sources := make([]*sourceDomain.Source, 0)
	for rows.Next() {
		var source sourceDomain.Source
		var primary, secondary *string

		err := rows.Scan(
			&source.ID,
			&source.Name,
			&source.IsActive,
			&source.IsSecured,
			&primary,
			&secondary,
			&source.LastKeyRotationAt,
			&source.CreatedAt,
			&source.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan source row")
		}

		source.PrimaryKey, source.SecondaryKey, err = s.sealer.openKeys(source.ID, primary, secondary)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &source)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating source rows")
	}
	return sources, nil
}

// NewSQLiteSourceRepository creates a new SQLite Source repository.
func NewSQLiteSourceRepository(db *sql.DB, encryptor cryptoService.Encryptor) *SQLiteSourceRepository {
	return &SQLiteSourceRepository{db: db, sealer: keySealer{encryptor: encryptor}}
}
