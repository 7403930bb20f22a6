package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/relay/internal/database"
	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
)

// MySQLInboundEventRepository implements inbound event persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLInboundEventRepository struct {
	db *sql.DB
}

// NewMySQLInboundEventRepository creates a new MySQL inbound event repository.
func NewMySQLInboundEventRepository(db *sql.DB) *MySQLInboundEventRepository {
	return &MySQLInboundEventRepository{db: db}
}

// binaryID encodes a UUID for a BINARY(16) column.
func binaryID(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}

// Create inserts a new inbound event.
func (m *MySQLInboundEventRepository) Create(ctx context.Context, event *eventDomain.InboundEvent) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO inbound_events (id, source_id, payload, state, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryID(event.ID),
		binaryID(event.SourceID),
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
func (m *MySQLInboundEventRepository) Get(
	ctx context.Context,
	eventID uuid.UUID,
) (*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + inboundColumns + ` FROM inbound_events WHERE id = ?`

	event, err := scanInbound(querier.QueryRowContext(ctx, query, binaryID(eventID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventDomain.ErrInboundEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get inbound event")
	}
	return event, nil
}

// List retrieves inbound events ordered by ID descending.
func (m *MySQLInboundEventRepository) List(
	ctx context.Context,
	filter eventDomain.InboundFilter,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, m.db)

	cond := newConditions(false)
	if filter.SourceID != nil {
		cond.equal("source_id", binaryID(*filter.SourceID))
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

// ClaimQueued locks up to limit of the oldest QUEUED rows with
// FOR UPDATE SKIP LOCKED and marks them IN_PROGRESS. MySQL cannot combine
// both in one statement, so it must run inside a transaction carried by ctx;
// the row locks hold until that transaction commits.
func (m *MySQLInboundEventRepository) ClaimQueued(
	ctx context.Context,
	limit int,
	claim eventDomain.Claim,
) ([]*eventDomain.InboundEvent, error) {
	querier := database.GetTx(ctx, m.db)

	selectQuery := `SELECT ` + inboundColumns + ` FROM inbound_events
					WHERE state = ?
					ORDER BY created_at, id
					LIMIT ?
					FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, selectQuery, string(eventDomain.StateQueued), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to select queued inbound events")
	}
	events, err := collectInbound(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	placeholders := make([]string, len(events))
	args := []any{
		string(eventDomain.StateInProgress),
		binaryID(claim.Token),
		claim.WorkerID,
		claim.ClaimedAt,
		claim.ClaimedAt,
	}
	for i, event := range events {
		placeholders[i] = "?"
		args = append(args, binaryID(event.ID))
	}

	updateQuery := `UPDATE inbound_events
					SET state = ?, claim_token = ?, claimed_by = ?, claimed_at = ?, updated_at = ?
					WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	if _, err := querier.ExecContext(ctx, updateQuery, args...); err != nil {
		return nil, apperrors.Wrap(err, "failed to claim inbound events")
	}

	workerID := claim.WorkerID
	claimedAt := claim.ClaimedAt
	for _, event := range events {
		event.State = eventDomain.StateInProgress
		event.ClaimToken = uuid.NullUUID{UUID: claim.Token, Valid: true}
		event.ClaimedBy = &workerID
		event.ClaimedAt = &claimedAt
		event.UpdatedAt = claimedAt
	}
	return events, nil
}

// Finalize writes a terminal state for an event still held under claimToken.
// Returns ErrClaimLost when the event is no longer IN_PROGRESS under that token.
func (m *MySQLInboundEventRepository) Finalize(
	ctx context.Context,
	eventID, claimToken uuid.UUID,
	state eventDomain.State,
	at time.Time,
) error {
	if !eventDomain.StateInProgress.CanTransitionTo(state) {
		return eventDomain.ErrInvalidStateTransition
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE inbound_events SET state = ?, updated_at = ?
			  WHERE id = ? AND state = ? AND claim_token = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(state),
		at,
		binaryID(eventID),
		string(eventDomain.StateInProgress),
		binaryID(claimToken),
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
func (m *MySQLInboundEventRepository) RequeueStranded(
	ctx context.Context,
	claimedBefore, now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLInboundEventRepository) CountByState(
	ctx context.Context,
	since time.Time,
) (eventDomain.StateCounts, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT state, COUNT(*) FROM inbound_events WHERE created_at >= ? GROUP BY state`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count inbound events")
	}
	return collectCounts(rows)
}
