// Package usecase implements source management and credential rotation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// SourceRepository defines persistence operations for sources. Implementations
// encrypt keys before writing and decrypt them after reading.
type SourceRepository interface {
	// Create stores a new source.
	Create(ctx context.Context, source *sourceDomain.Source) error

	// Update persists name, flags, keys and rotation time of an existing source.
	Update(ctx context.Context, source *sourceDomain.Source) error

	// Get retrieves a source by ID. Returns ErrSourceNotFound if not found.
	Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)

	// GetForUpdate retrieves a source and locks its row until the surrounding
	// transaction ends. Returns ErrSourceNotFound if not found.
	GetForUpdate(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)

	// List retrieves sources ordered by ID descending.
	List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error)
}

// SourceUseCase manages sources and their rotating keys.
type SourceUseCase interface {
	// Create registers a new source without keys.
	Create(ctx context.Context, input *sourceDomain.CreateSourceInput) (*sourceDomain.Source, error)

	// Update changes name and flags. Keys are untouched.
	Update(ctx context.Context, sourceID uuid.UUID, input *sourceDomain.UpdateSourceInput) (*sourceDomain.Source, error)

	// Get retrieves a source including its decrypted keys.
	Get(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)

	// List retrieves sources with pagination.
	List(ctx context.Context, offset, limit int) ([]*sourceDomain.Source, error)

	// Disable soft deletes a source; it stops accepting events but keeps its history.
	Disable(ctx context.Context, sourceID uuid.UUID) error

	// SetupKeys issues two fresh keys, replacing any existing ones.
	SetupKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)

	// RotateKeys demotes the primary key to secondary and issues a new primary.
	RotateKeys(ctx context.Context, sourceID uuid.UUID) (*sourceDomain.Source, error)

	// Authenticate returns the source when it is active and, for secured sources,
	// the presented key matches a live key. Missing sources, disabled sources and
	// wrong keys all return ErrSourceKeyMismatch.
	Authenticate(ctx context.Context, sourceID uuid.UUID, presentedKey string) (*sourceDomain.Source, error)
}
