package driven

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// Catalog searches a music catalogue for candidate tracks.
type Catalog interface {
	// SearchTracks returns up to limit tracks matching query, in catalogue order.
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.CatalogTrack, error)
}
