package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

// PostgreSQLPipelineRepository implements Pipeline persistence for PostgreSQL.
type PostgreSQLPipelineRepository struct {
	db *sql.DB
}

// Create inserts a new pipeline.
func (p *PostgreSQLPipelineRepository) Create(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, p.db)

	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `INSERT INTO pipelines (` + pipelineColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		pipeline.ID,
		pipeline.SourceID,
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
func (p *PostgreSQLPipelineRepository) Update(ctx context.Context, pipeline *pipelineDomain.Pipeline) error {
	querier := database.GetTx(ctx, p.db)

	config, err := marshalConfig(pipeline)
	if err != nil {
		return err
	}

	query := `UPDATE pipelines SET name = $1, is_active = $2, config = $3, updated_at = $4 WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		pipeline.Name,
		pipeline.IsActive,
		config,
		pipeline.UpdatedAt,
		pipeline.ID,
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
func (p *PostgreSQLPipelineRepository) Get(ctx context.Context, pipelineID uuid.UUID) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = $1`

	pipeline, err := p.scan(querier.QueryRowContext(ctx, query, pipelineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// GetByName retrieves the pipeline of a source with the given name.
func (p *PostgreSQLPipelineRepository) GetByName(
	ctx context.Context,
	sourceID uuid.UUID,
	name string,
) (*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE source_id = $1 AND name = $2
			  ORDER BY created_at, id LIMIT 1`

	pipeline, err := p.scan(querier.QueryRowContext(ctx, query, sourceID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipelineDomain.ErrPipelineNotFound
		}
		return nil, err
	}
	return pipeline, nil
}

// List retrieves pipelines ordered by ID descending, optionally for one source.
func (p *PostgreSQLPipelineRepository) List(
	ctx context.Context,
	filter pipelineDomain.ListFilter,
) ([]*pipelineDomain.Pipeline, error) {
	args := []any{}
	where := ""
	if filter.SourceID != nil {
		args = append(args, *filter.SourceID)
		where = " WHERE source_id = $1"
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM pipelines%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		pipelineColumns, where, len(args)-1, len(args))

	return p.query(ctx, query, args...)
}

// ListActive retrieves the active pipelines of a source, oldest first.
func (p *PostgreSQLPipelineRepository) ListActive(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines
			  WHERE source_id = $1 AND is_active = TRUE
			  ORDER BY created_at, id`

	return p.query(ctx, query, sourceID)
}

func (p *PostgreSQLPipelineRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*pipelineDomain.Pipeline, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pipelines")
	}
	defer func() {
		_ = rows.Close()
	}()

	pipelines := make([]*pipelineDomain.Pipeline, 0)
	for rows.Next() {
		pipeline, err := p.scan(rows)
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

func (p *PostgreSQLPipelineRepository) scan(row rowScanner) (*pipelineDomain.Pipeline, error) {
	var pipeline pipelineDomain.Pipeline
	var config []byte

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

	if err := unmarshalConfig(config, &pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// NewPostgreSQLPipelineRepository creates a new PostgreSQL Pipeline repository.
func NewPostgreSQLPipelineRepository(db *sql.DB) *PostgreSQLPipelineRepository {
	return &PostgreSQLPipelineRepository{db: db}
}
