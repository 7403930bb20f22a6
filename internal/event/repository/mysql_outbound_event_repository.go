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

// MySQLOutboundEventRepository implements outbound event persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLOutboundEventRepository struct {
	db *sql.DB
}

// NewMySQLOutboundEventRepository creates a new MySQL outbound event repository.
func NewMySQLOutboundEventRepository(db *sql.DB) *MySQLOutboundEventRepository {
	return &MySQLOutboundEventRepository{db: db}
}

// Create inserts a new outbound event.
func (m *MySQLOutboundEventRepository) Create(ctx context.Context, event *eventDomain.OutboundEvent) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO outbound_events (` + outboundColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryID(event.ID),
		binaryID(event.InboundEventID),
		binaryID(event.PipelineID),
		binaryID(event.SourceID),
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
func (m *MySQLOutboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.OutboundEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + outboundColumns + ` FROM outbound_events WHERE id = ?`

	event, err := scanOutbound(querier.QueryRowContext(ctx, query, binaryID(eventID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventDomain.ErrOutboundEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get outbound event")
	}
	return event, nil
}

// List retrieves outbound events ordered by ID descending.
func (m *MySQLOutboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.OutboundFilter,
) ([]*eventDomain.OutboundEvent, error) {
	querier := database.GetTx(ctx, m.db)

	cond := newConditions(false)
	if filter.PipelineID != nil {
		cond.equal("pipeline_id", binaryID(*filter.PipelineID))
	}
	if filter.SourceID != nil {
		cond.equal("source_id", binaryID(*filter.SourceID))
	}
	if filter.InboundEventID != nil {
		cond.equal("inbound_event_id", binaryID(*filter.InboundEventID))
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
func (m *MySQLOutboundEventRepository) RecordAttempt(
	ctx context.Context,
	eventID uuid.UUID,
	state eventDomain.State,
	lastError *string,
	at time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE outbound_events
			  SET state = ?, attempts = attempts + 1, last_error = ?, updated_at = ?
			  WHERE id = ? AND state IN (?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(state),
		lastError,
		at,
		binaryID(eventID),
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
func (m *MySQLOutboundEventRepository) RequeueFailedByPipeline(
	ctx context.Context,
	pipelineID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE outbound_events SET state = ?, updated_at = ? WHERE pipeline_id = ? AND state = ?`

	result, err := querier.ExecContext(ctx, query, string(eventDomain.StateQueued), now, binaryID(pipelineID),
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
func (m *MySQLOutboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT state, COUNT(*) FROM outbound_events WHERE created_at >= ? GROUP BY state`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count outbound events")
	}
	return collectCounts(rows)
}
