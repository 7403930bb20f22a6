package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/allisson/relay/internal/event/domain"
	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

type ingestUseCase struct {
	sources     SourceAuthenticator
	inboundRepo InboundEventRepository
	now         func() time.Time
}

func (i *ingestUseCase) Authenticate(
	ctx context.Context,
	sourceID uuid.UUID,
	presentedKey string,
) (*sourceDomain.Source, error) {
	return i.sources.Authenticate(ctx, sourceID, presentedKey)
}

func (i *ingestUseCase) Ingest(
	ctx context.Context,
	source *sourceDomain.Source,
	payload []byte,
) (*eventDomain.InboundEvent, error) {
	event, err := eventDomain.NewInboundEvent(source.ID, payload, i.now())
	if err != nil {
		return nil, err
	}

	if err := i.inboundRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// NewIngestUseCase creates an IngestUseCase.
func NewIngestUseCase(sources SourceAuthenticator, inboundRepo InboundEventRepository) IngestUseCase {
	return &ingestUseCase{
		sources:     sources,
		inboundRepo: inboundRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}
