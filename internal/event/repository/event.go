// Package repository implements inbound and outbound event persistence for
// PostgreSQL, MySQL and SQLite, including the batch claim of queued events.
package repository

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/allisson/relay/internal/errors"
	eventDomain "github.com/allisson/relay/internal/event/domain"
)

const inboundColumns = `id, source_id, payload, state, claim_token, claimed_by, claimed_at, created_at, updated_at`

const outboundColumns = `id, inbound_event_id, pipeline_id, source_id, payload, state, attempts, last_error,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanInbound reads an inbound row. UUID columns scan from native UUID,
// BINARY(16) and TEXT alike.
func scanInbound(row rowScanner) (*eventDomain.InboundEvent, error) {
	var event eventDomain.InboundEvent
	var payload []byte

	err := row.Scan(
		&event.ID,
		&event.SourceID,
		&payload,
		&event.State,
		&event.ClaimToken,
		&event.ClaimedBy,
		&event.ClaimedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Payload = payload
	return &event, nil
}

func scanOutbound(row rowScanner) (*eventDomain.OutboundEvent, error) {
	var event eventDomain.OutboundEvent
	var payload []byte

	err := row.Scan(
		&event.ID,
		&event.InboundEventID,
		&event.PipelineID,
		&event.SourceID,
		&payload,
		&event.State,
		&event.Attempts,
		&event.LastError,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Payload = payload
	return &event, nil
}

type querierRows interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

func collectInbound(rows querierRows) ([]*eventDomain.InboundEvent, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*eventDomain.InboundEvent, 0)
	for rows.Next() {
		event, err := scanInbound(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan inbound event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating inbound event rows")
	}
	return events, nil
}

func collectOutbound(rows querierRows) ([]*eventDomain.OutboundEvent, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*eventDomain.OutboundEvent, 0)
	for rows.Next() {
		event, err := scanOutbound(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbound event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating outbound event rows")
	}
	return events, nil
}

func collectCounts(rows querierRows) (eventDomain.StateCounts, error) {
	defer func() {
		_ = rows.Close()
	}()

	counts := eventDomain.StateCounts{}
	for rows.Next() {
		var state eventDomain.State
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan state count")
		}
		counts[state] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating state counts")
	}
	return counts, nil
}

// sortClaimed restores oldest-first order, which UPDATE ... RETURNING does not guarantee.
func sortClaimed(events []*eventDomain.InboundEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID.String() < events[j].ID.String()
	})
}

// conditions accumulates equality filters for list queries.
type conditions struct {
	clauses  []string
	args     []any
	numbered bool
}

func newConditions(numbered bool) *conditions {
	return &conditions{numbered: numbered}
}

func (c *conditions) bind(value any) string {
	c.args = append(c.args, value)
	if c.numbered {
		return fmt.Sprintf("$%d", len(c.args))
	}
	return "?"
}

func (c *conditions) equal(column string, value any) {
	c.clauses = append(c.clauses, column+" = "+c.bind(value))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends ORDER BY and pagination to a list query.
func (c *conditions) page(offset, limit int) string {
	limitPlaceholder := c.bind(limit)
	offsetPlaceholder := c.bind(offset)
	return c.where() + " ORDER BY id DESC LIMIT " + limitPlaceholder + " OFFSET " + offsetPlaceholder
}
