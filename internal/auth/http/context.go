package http

import (
	"context"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
)

// sourceKey is a context key type for storing the authenticated source.
type sourceKey struct{}

// WithSource stores an authenticated source in the context.
// Called by the ingestion authentication middleware once the source key checks out.
func WithSource(ctx context.Context, source *sourceDomain.Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// GetSource retrieves the authenticated source from the context.
// Returns (source, true) if a source is present, or (nil, false) if none was set.
func GetSource(ctx context.Context) (*sourceDomain.Source, bool) {
	source, ok := ctx.Value(sourceKey{}).(*sourceDomain.Source)
	return source, ok && source != nil
}
