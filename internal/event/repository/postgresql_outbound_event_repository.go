package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
)

// PostgreSQLOutboundEventRepository implements outbound event persistence for PostgreSQL.
type PostgreSQLOutboundEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLOutboundEventRepository creates a new PostgreSQL outbound event repository.
func NewPostgreSQLOutboundEventRepository(db *sql.DB) *PostgreSQLOutboundEventRepository {
	return &PostgreSQLOutboundEventRepository{db: db}
}

// Create inserts a new outbound event.
func (p *PostgreSQLOutboundEventRepository) Create(ctx context.Context, event *eventDomain.OutboundEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO outbound_events (` + outboundColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.InboundEventID,
		event.PipelineID,
		event.SourceID,
		string(event.Payload),
		string(event.State),
		event.Attempts,
		event.LastError,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbound event")
	}
	return nil
}

// Get retrieves an outbound event by ID.
func (p *PostgreSQLOutboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.OutboundEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + outboundColumns + ` FROM outbound_events WHERE id = $1`

	event, err := scanOutbound(querier.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventDomain.ErrOutboundEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get outbound event")
	}
	return event, nil
}

// List retrieves outbound events ordered by ID descending.
func (p *PostgreSQLOutboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	querier := database.GetTx(ctx, p.db)

	cond := newConditions(true)
	if filter.PipelineID != nil {
		cond.equal("pipeline_id", *filter.PipelineID)
	}
	if filter.SourceID != nil {
		cond.equal("source_id", *filter.SourceID)
	}
	if filter.InboundEventID != nil {
		cond.equal("inbound_event_id", *filter.InboundEventID)
	}
	if filter.State != nil {
		cond.equal("state", string(*filter.State))
	}
	query := `SELECT ` + outboundColumns + ` FROM outbound_events` + cond.page(filter.Offset, filter.Limit)

	rows, err := querier.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list outbound events")
	}
	return collectOutbound(rows)
}

// RecordAttempt stores a delivery attempt reported by the downstream worker:
// attempts is incremented and the state becomes COMPLETED or FAILED.
// Returns ErrInvalidStateTransition when the event is already terminal or absent.
func (p *PostgreSQLOutboundEventRepository) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	lastError *string,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE outbound_events
			  SET state = $1, attempts = attempts + 1, last_error = $2, updated_at = $3
			  WHERE id = $4 AND state IN ($5, $6)`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(state),
		lastError,
		at,
		eventID,
		string(eventDomain.StateQueued),
		string(eventDomain.StateInProgress),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to record outbound attempt")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return eventDomain.ErrInvalidStateTransition
	}
	return nil
}

// RequeueFailedByPipeline moves every FAILED outbound event of a pipeline back
// to QUEUED and returns how many changed. Other pipelines and states are untouched.
func (p *PostgreSQLOutboundEventRepository) RequeueFailedByPipeline(
	ctx context.Context,
	pipelineID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE outbound_events SET state = $1, updated_at = $2 WHERE pipeline_id = $3 AND state = $4`

	result, err := querier.ExecContext(ctx, query, string(eventDomain.StateQueued), now, pipelineID,
		string(eventDomain.StateFailed))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to requeue outbound events")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

// CountByState counts outbound events created at or after since, per state.
func (p *PostgreSQLOutboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT state, COUNT(*) FROM outbound_events WHERE created_at >= $1 GROUP BY state`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count outbound events")
	}
	return collectCounts(rows)
}
