package usecase

import (
	"context"
	"time"

	eventDomain "github.com/allisson/relay/internal/event/domain"
)

type statsUseCase struct {
	inboundRepo  InboundEventRepository
	outboundRepo OutboundEventRepository
}

func (s *statsUseCase) Counts(ctx context.Context, since time.Time) (*eventDomain.Stats, error) {
	since = since.UTC()

	inbound, err := s.inboundRepo.CountByState(ctx, since)
	if err != nil {
		return nil, err
	}
	outbound, err := s.outboundRepo.CountByState(ctx, since)
	if err != nil {
		return nil, err
	}

	return &eventDomain.Stats{
		Since:    since,
		Inbound:  fillStates(inbound),
		Outbound: fillStates(outbound),
	}, nil
}

// fillStates reports absent states as zero.
func fillStates(counts eventDomain.StateCounts) eventDomain.StateCounts {
	filled := make(eventDomain.StateCounts, len(eventDomain.States))
	for _, state := range eventDomain.States {
		filled[state] = counts[state]
	}
	return filled
}

// NewStatsUseCase creates a StatsUseCase.
func NewStatsUseCase(inboundRepo InboundEventRepository, outboundRepo OutboundEventRepository) StatsUseCase {
	return &statsUseCase{inboundRepo: inboundRepo, outboundRepo: outboundRepo}
}
