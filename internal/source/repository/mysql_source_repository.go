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

// MySQLSourceRepository implements Source persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLSourceRepository struct {
	db     *sql.DB
	sealer keySealer
}

// Create inserts a new source with its keys encrypted.
func (m *MySQLSourceRepository) Create(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, m.db)

	id, err := source.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal source id")
	}

	primary, secondary, err := m.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO sources (` + sourceColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Update persists the mutable fields and keys of a source. MySQL reports zero
// affected rows when nothing changed, so existence is checked separately.
func (m *MySQLSourceRepository) Update(ctx context.Context, source *sourceDomain.Source) error {
	querier := database.GetTx(ctx, m.db)

	id, err := source.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal source id")
	}

	primary, secondary, err := m.sealer.sealKeys(source.ID, source.PrimaryKey, source.SecondaryKey)
	if err != nil {
		return err
	}

	query := `UPDATE sources
			  SET name = ?, is_active = ?, is_secured = ?, primary_key_ciphertext = ?,
				  secondary_key_ciphertext = ?, last_key_rotation_at = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		source.Name,
		source.IsActive,
		source.IsSecured,
		primary,
		secondary,
		source.LastKeyRotationAt,
		source.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update source")
	}
	return nil
}

// Get retrieves a source by ID.
func (m *MySQLSourceRepository) Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return m.get(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, sourceID)
}

// GetForUpdate retrieves a source and locks its row for the current transaction.
func (m *MySQLSourceRepository) GetForUpdate(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error) {
	return m.get(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ? FOR UPDATE`, sourceID)
}

func (m *MySQLSourceRepository) get(
	ctx context.Context,
	query string,
	sourceID uuid.UUID,
) (*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := sourceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal source id")
	}

	source, err := m.scan(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sourceDomain.ErrSourceNotFound
		}
		return nil, err
	}
	return source, nil
}

// List retrieves sources ordered by ID descending.
func (m *MySQLSourceRepository) List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error) {
	querier := database.GetTx(ctx, m.db)

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
		source, err := m.scan(rows)
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

func (m *MySQLSourceRepository) scan(row rowScanner) (*sourceDomain.Source, error) {
	var source sourceDomain.Source
	var idBytes []byte
	var primary, secondary *string

	err := row.Scan(
		&idBytes,
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

	if err := source.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal source id")
	}

	source.PrimaryKey, source.SecondaryKey, err = m.sealer.openKeys(source.ID, primary, secondary)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// NewMySQLSourceRepository creates a new MySQL Source repository.
func NewMySQLSourceRepository(db *sql.DB, encryptor cryptoService.Encryptor) *MySQLSourceRepository {
	return &MySQLSourceRepository{db: db, sealer: keySealer{encryptor: encryptor}}
}
