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

// SQLiteInboundEventRepository implements inbound event persistence for SQLite
// with UUIDs stored as TEXT.
type SQLiteInboundEventRepository struct {
	db *sql.DB
}

// NewSQLiteInboundEventRepository creates a new SQLite inbound event repository.
func NewSQLiteInboundEventRepository(db *sql.DB) *SQLiteInboundEventRepository {
	return &SQLiteInboundEventRepository{db: db}
}

// Create inserts a new inbound event.
func (s *SQLiteInboundEventRepository) Create(ctx context.Context, event *eventDomain.InboundEvent) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO inbound_events (id, source_id, payload, state, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID.String(),
		event.SourceID.String(),
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
func (s *SQLiteInboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + inboundColumns + ` FROM inbound_events WHERE id = ?`

	event, err := scanInbound(querier.QueryRowContext(ctx, query, eventID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventDomain.ErrInboundEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get inbound event")
	}
	return event, nil
}

// List retrieves inbound events ordered by ID descending.
func (s *SQLiteInboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, s.db)

	cond := newConditions(false)
	if filter.SourceID != nil {
		cond.equal("source_id", filter.SourceID.String())
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
// a single UPDATE ... RETURNING. SQLite has no row locks; its single writer
// serializes concurrent claims so batches never overlap.
func (s *SQLiteInboundEventRepository) ClaimQueued(
	ctx context.Context,
	limit int,
	claim eventDomain.Claim,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE inbound_events
			  SET state = ?, claim_token = ?, claimed_by = ?, claimed_at = ?, updated_at = ?
			  WHERE id IN (
				  SELECT id FROM inbound_events
				  WHERE state = ?
				  ORDER BY created_at, id
				  LIMIT ?
			  )
			  RETURNING ` + inboundColumns

	rows, err := querier.QueryContext(
		ctx,
		query,
		string(eventDomain.StateInProgress),
		claim.Token.String(),
		claim.WorkerID,
		claim.ClaimedAt,
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
func (s *SQLiteInboundEventRepository) Finalize(
	ctx context.Context,
	eventID, claimToken uuid.UUID,
	state eventDomain.State,
	at time.Time,
) error {
	if !eventDomain.StateInProgress.CanTransitionTo(state) {
		return eventDomain.ErrInvalidStateTransition
	}

	querier := database.GetTx(ctx, s.db)

	query := `UPDATE inbound_events SET state = ?, updated_at = ?
			  WHERE id = ? AND state = ? AND claim_token = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(state),
		at,
		eventID.String(),
		string(eventDomain.StateInProgress),
		claimToken.String(),
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
func (s *SQLiteInboundEventRepository) RequeueStranded(
	ctx context.Context,
	claimedBefore, now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE inbound_events
			  SET state = ?, claim_token = NULL, claimed_by = NULL, claimed_at = NULL, updated_at = ?
			  WHERE state = ? AND claimed_at < ?`

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
func (s *SQLiteInboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT state, COUNT(*) FROM inbound_events WHERE created_at >= ? GROUP BY state`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count inbound events")
	}
	return collectCounts(rows)
}
