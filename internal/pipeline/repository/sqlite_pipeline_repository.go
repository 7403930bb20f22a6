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

// SQLitePipelineRepository implements Pipeline persistence for SQLite with
// UUIDs stored as TEXT.
type SQLitePipelineRepository struct {
	db *sql.DB
}

// Create inserts a new pipeline.
func (s *SQLitePipelineRepository) Create(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, s.db)

	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `INSERT INTO pipelines (` + pipelineColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		pipeline.ID.String(),
		pipeline.SourceID.String(),
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

// Update persists name, active flag and config.
func (s *SQLitePipelineRepository) Update(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, s.db)

	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `UPDATE pipelines SET name = ?, is_active = ?, config = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		pipeline.Name,
		pipeline.IsActive,
		config,
		pipeline.UpdatedAt,
		pipeline.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pipeline")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return pipelineDomain.ErrPipelineNotFound
	}
	return nil
}

// Get retrieves a pipeline by ID.
func (s *SQLitePipelineRepository) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = ?`

	pipeline, err := s.scan(querier.QueryRowContext(ctx, query, pipelineID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// GetByName retrieves the pipeline of a source with the given name.
func (s *SQLitePipelineRepository) GetByName(
	ctx context.Context,
	sourceID uuid.UUID,
	name string,
) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE source_id = ? AND name = ?
			  ORDER BY created_at, id LIMIT 1`

	pipeline, err := s.scan(querier.QueryRowContext(ctx, query, sourceID.String(), name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// List retrieves pipelines ordered by ID descending, optionally for one source.
func (s *SQLitePipelineRepository) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	args := []any{}
	query := `SELECT ` + pipelineColumns + ` FROM pipelines`
	if filter.SourceID != nil {
		args = append(args, filter.SourceID.String())
		query += ` WHERE source_id = ?`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	return s.query(ctx, query, args...)
}

// ListActive retrieves the active pipelines of a source, oldest first.
func (s *SQLitePipelineRepository) ListActive(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines
			  WHERE source_id = ? AND is_active = 1
			  ORDER BY created_at, id`

	return s.query(ctx, query, sourceID.String())
}

func (s *SQLitePipelineRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, s.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pipelines")
	}
	defer func() {
		_ = rows.Close()
	}()

	pipelines := make([]*pipelineDomain.Pipeline, 0)
	for rows.Next() {
		pipeline, err := s.scan(rows)
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

func (s *SQLitePipelineRepository) scan(row rowScanner) (*pipelineDomain.Pipeline, error) {
	var pipeline pipelineDomain.Pipeline
	var config string

	err := row.Scan(
		&pipeline.ID,
		&pipeline.SourceID,
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

	if err := unmarshalConfig([]byte(config), &pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// NewSQLitePipelineRepository creates a new SQLite Pipeline repository.
func NewSQLitePipelineRepository(db *sql.DB) *SQLitePipelineRepository {
	return &SQLitePipelineRepository{db: db}
}
