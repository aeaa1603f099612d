package driving

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// DiscoveryService finds candidate tracks in the music catalogue.
type DiscoveryService interface {
	// Discover searches the catalogue. A zero limit means
	// domain.DefaultCatalogLimit; larger limits are capped at
	// domain.MaxCatalogLimit.
	Discover(ctx context.Context, query string, limit int) ([]domain.CatalogTrack, error)

	// DiscoverAndSync searches the catalogue and bulk-syncs the hits.
	DiscoverAndSync(ctx context.Context, query string, limit int) (domain.DiscoveryResult, error)
}
