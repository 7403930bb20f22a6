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

// PostgreSQLInboundEventRepository implements inbound event persistence for PostgreSQL.
type PostgreSQLInboundEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLInboundEventRepository creates a new PostgreSQL inbound event repository.
func NewPostgreSQLInboundEventRepository(db *sql.DB) *PostgreSQLInboundEventRepository {
	return &PostgreSQLInboundEventRepository{db: db}
}

// Create inserts a new inbound event.
func (p *PostgreSQLInboundEventRepository) Create(ctx context.Context, event *eventDomain.InboundEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO inbound_events (id, source_id, payload, state, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.SourceID,
		string(event.Payload),
		string(event.State),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create inbound event")
	}
	return nil
}

// Get retrieves an inbound event by ID.
func (p *PostgreSQLInboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + inboundColumns + ` FROM inbound_events WHERE id = $1`

	event, err := scanInbound(querier.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventDomain.ErrInboundEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get inbound event")
	}
	return event, nil
}

// List retrieves inbound events ordered by ID descending.
func (p *PostgreSQLInboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, p.db)

	cond := newConditions(true)
	if filter.SourceID != nil {
		cond.equal("source_id", *filter.SourceID)
	}
	if filter.State != nil {
		cond.equal("state", string(*filter.State))
	}
	query := `SELECT ` + inboundColumns + ` FROM inbound_events` + cond.page(filter.Offset, filter.Limit)

	rows, err := querier.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list inbound events")
	}
	return collectInbound(rows)
}

// ClaimQueued moves up to limit of the oldest QUEUED events to IN_PROGRESS in
// one statement. Rows locked by a concurrent claim are skipped, not waited on,
// so concurrent callers always receive disjoint batches.
func (p *PostgreSQLInboundEventRepository) ClaimQueued(
	ctx context.Context,
	limit int,
	claim eventDomain.Claim,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE inbound_events
			  SET state = $1, claim_token = $2, claimed_by = $3, claimed_at = $4, updated_at = $4
			  WHERE id IN (
				  SELECT id FROM inbound_events
				  WHERE state = $5
				  ORDER BY created_at, id
				  LIMIT $6
				  FOR UPDATE SKIP LOCKED
			  ) AND state = $5
			  RETURNING ` + inboundColumns

	rows, err := querier.QueryContext(
		ctx,
		query,
		string(eventDomain.StateInProgress),
		claim.Token,
		claim.WorkerID,
		claim.ClaimedAt,
		string(eventDomain.StateQueued),
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim inbound events")
	}

	events, err := collectInbound(rows)
	if err != nil {
		return nil, err
	}
	sortClaimed(events)
	return events, nil
}

// Finalize writes a terminal state for an event still held under claimToken.
// Returns ErrClaimLost when the event is no longer IN_PROGRESS under that token.
func (p *PostgreSQLInboundEventRepository) Finalize(
	ctx context.Context,
	eventID, claimToken uuid.UUID,
	state eventDomain.State,
	at time.Time,
) error {
	if !eventDomain.StateInProgress.CanTransitionTo(state) {
		return eventDomain.ErrInvalidStateTransition
	}

	querier := database.GetTx(ctx, p.db)

	query := `UPDATE inbound_events SET state = $1, updated_at = $2
			  WHERE id = $3 AND state = $4 AND claim_token = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(state),
		at,
		eventID,
		string(eventDomain.StateInProgress),
		claimToken,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to finalize inbound event")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return eventDomain.ErrClaimLost
	}
	return nil
}

// RequeueStranded returns IN_PROGRESS events claimed before claimedBefore to
// QUEUED and clears their claim.
func (p *PostgreSQLInboundEventRepository) RequeueStranded(
	ctx context.Context,
	claimedBefore, now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE inbound_events
			  SET state = $1, claim_token = NULL, claimed_by = NULL, claimed_at = NULL, updated_at = $2
			  WHERE state = $3 AND claimed_at < $4`

	result, err := querier.ExecContext(ctx, query, string(eventDomain.StateQueued), now,
		string(eventDomain.StateInProgress), claimedBefore)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to requeue stranded inbound events")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

// CountByState counts inbound events created at or after since, per state.
func (p *PostgreSQLInboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT state, COUNT(*) FROM inbound_events WHERE created_at >= $1 GROUP BY state`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count inbound events")
	}
	return collectCounts(rows)
}
