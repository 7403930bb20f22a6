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

// PostgreSQLSourceRepository implements Source persistence for PostgreSQL.
type PostgreSQLSourceRepository struct {
	db     *sql.DB
	sealer keySealer
}

// Create inserts a new source with its keys encrypted.
func (p *PostgreSQLSourceRepository) Create(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, p.db)

	primary, secondary, err := p.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO sources (` + sourceColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		source.ID,
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
func (p *PostgreSQLSourceRepository) Update(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, p.db)

	primary, secondary, err := p.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `UPDATE sources
			  SET name = $1,
				  is_active = $2,
				  is_secured = $3,
				  primary_key_ciphertext = $4,
				  secondary_key_ciphertext = $5,
				  last_key_rotation_at = $6,
				  updated_at = $7
			  WHERE id = $8`

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
		source.ID,
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
func (p *PostgreSQLSourceRepository) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return p.get(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1`, sourceID)
}

// GetForUpdate retrieves a source and locks its row for the current transaction.
func (p *PostgreSQLSourceRepository) GetForUpdate(
	ctx context.Context,
	sourceID uuid.UUID,
) (*sourceDomain.Source, error) {
	return p.get(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1 FOR UPDATE`, sourceID)
}

func (p *PostgreSQLSourceRepository) get(
	ctx context.Context,
	query string,
	sourceID uuid.UUID,
) (*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, p.db)

	source, err := p.scan(querier.QueryRowContext(ctx, query, sourceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sourceDomain.ErrSourceNotFound
		}
		return nil, err
	}
	return source, nil
}

// List retrieves sources ordered by ID descending.
func (p *PostgreSQLSourceRepository) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sources")
	}
	defer func() {
		_ = rows.Close()
	}()

	sources := make([]*sourceDomain.Source, 0)
	for rows.Next() {
		source, err := p.scan(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating source rows")
	}
	return sources, nil
}

func (p *PostgreSQLSourceRepository) scan(row rowScanner) (*sourceDomain.Source, error) {
	var source sourceDomain.Source
	var primary, secondary *string

	err := row.Scan(
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
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan source")
	}

	source.PrimaryKey, source.SecondaryKey, err = p.sealer.openKeys(source.ID, primary, secondary)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// NewPostgreSQLSourceRepository creates a new PostgreSQL Source repository.
func NewPostgreSQLSourceRepository(db *sql.DB, encryptor cryptoService.Encryptor) *PostgreSQLSourceRepository {
	return &PostgreSQLSourceRepository{db: db, sealer: keySealer{encryptor: encryptor}}
}
