package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

// MySQLPipelineRepository implements Pipeline persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLPipelineRepository struct {
	db *sql.DB
}

// Create inserts a new pipeline.
func (m *MySQLPipelineRepository) Create(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, m.db)

	id, err := pipeline.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal pipeline id")
	}
	sourceID, err := pipeline.SourceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal source id")
	}
	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `INSERT INTO pipelines (` + pipelineColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		sourceID,
		pipeline.Name,
		pipeline.IsActive,
		config,
		pipeline.CreatedAt,
		pipeline.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pipeline")
	}
	return nil
}

// Update persists name, active flag and config. MySQL reports zero affected
// rows when nothing changed, so callers load the pipeline first.
func (m *MySQLPipelineRepository) Update(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, m.db)

	id, err := pipeline.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal pipeline id")
	}
	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `UPDATE pipelines SET name = ?, is_active = ?, config = ?, updated_at = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, pipeline.Name, pipeline.IsActive, config, pipeline.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pipeline")
	}
	return nil
}

// Get retrieves a pipeline by ID.
func (m *MySQLPipelineRepository) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := pipelineID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal pipeline id")
	}

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = ?`

	pipeline, err := m.scan(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// GetByName retrieves the pipeline of a source with the given name.
func (m *MySQLPipelineRepository) GetByName(
	ctx context.Context,
	sourceID uuid.UUID,
	name string,
) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := sourceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal source id")
	}

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE source_id = ? AND name = ?
			  ORDER BY created_at, id LIMIT 1`

	pipeline, err := m.scan(querier.QueryRowContext(ctx, query, id, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// List retrieves pipelines ordered by ID descending, optionally for one source.
func (m *MySQLPipelineRepository) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	args := []any{}
	query := `SELECT ` + pipelineColumns + ` FROM pipelines`
	if filter.SourceID != nil {
		id, err := filter.SourceID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal source id")
		}
		args = append(args, id)
		query += ` WHERE source_id = ?`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	return m.query(ctx, query, args...)
}

// ListActive retrieves the active pipelines of a source, oldest first.
func (m *MySQLPipelineRepository) ListActive(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	id, err := sourceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal source id")
	}

	query := `SELECT ` + pipelineColumns + ` FROM pipelines
			  WHERE source_id = ? AND is_active = TRUE
			  ORDER BY created_at, id`

	return m.query(ctx, query, id)
}

func (m *MySQLPipelineRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pipelines")
	}
	defer func() {
		_ = rows.Close()
	}()

	pipelines := make([]*pipelineDomain.Pipeline, 0)
	for rows.Next() {
		pipeline, err := m.scan(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, pipeline)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating pipeline rows")
	}
	return pipelines, nil
}

func (m *MySQLPipelineRepository) scan(row rowScanner) (*pipelineDomain.Pipeline, error) {
	var pipeline pipelineDomain.Pipeline
	var id, sourceID, config []byte

	err := row.Scan(
		&id,
		&sourceID,
		&pipeline.Name,
		&pipeline.IsActive,
		&config,
		&pipeline.CreatedAt,
		&pipeline.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan pipeline")
	}

	if err := pipeline.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal pipeline id")
	}
	if err := pipeline.SourceID.UnmarshalBinary(sourceID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal source id")
	}
	if err := unmarshalConfig(config, &pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// NewMySQLPipelineRepository creates a new MySQL Pipeline repository.
func NewMySQLPipelineRepository(db *sql.DB) *MySQLPipelineRepository {
	return &MySQLPipelineRepository{db: db}
}
