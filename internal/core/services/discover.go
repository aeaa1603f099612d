package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// Ensure CatalogDiscovery implements the interface.
var _ driving.DiscoveryService = (*CatalogDiscovery)(nil)

// CatalogDiscovery turns catalogue hits into ingestion candidates.
type CatalogDiscovery struct {
	catalog driven.Catalog
	sync    driving.SyncService
}

// NewCatalogDiscovery creates a discovery service. sync may be nil, in which
// case only Discover is available.
func NewCatalogDiscovery(catalog driven.Catalog, sync driving.SyncService) *CatalogDiscovery {
	return &CatalogDiscovery{
		catalog: catalog,
		sync:    sync,
	}
}

// Discover searches the catalogue for query.
func (d *CatalogDiscovery) Discover(ctx context.Context, query string, limit int) ([]domain.CatalogTrack, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidInput, limit)
	}
	if limit == 0 {
		limit = domain.DefaultCatalogLimit
	}
	limit = min(limit, domain.MaxCatalogLimit)

	logger.Debug("Catalogue search: %q (limit %d)", query, limit)
	tracks, err := d.catalog.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalogue search: %w", err)
	}

	// Hits without an ID cannot be stored.
	kept := make([]domain.CatalogTrack, 0, len(tracks))
	for _, t := range tracks {
		if strings.TrimSpace(t.ID) == "" {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept, nil
}

// DiscoverAndSync searches the catalogue and ingests every hit through bulk
// sync. Rejected and failed hits are counted in the report, not returned as
// errors.
func (d *CatalogDiscovery) DiscoverAndSync(
	ctx context.Context, query string, limit int,
) (domain.DiscoveryResult, error) {
	if d.sync == nil {
		return domain.DiscoveryResult{}, fmt.Errorf("%w: bulk sync", domain.ErrNotConfigured)
	}

	tracks, err := d.Discover(ctx, query, limit)
	if err != nil {
		return domain.DiscoveryResult{}, err
	}
	result := domain.DiscoveryResult{Tracks: tracks}
	if len(tracks) == 0 {
		logger.Info("No catalogue results for %q", query)
		return result, nil
	}

	report, err := d.sync.Sync(ctx, domain.TrackInputs(tracks))
	result.Report = report
	if err != nil {
		return result, fmt.Errorf("sync discovered tracks: %w", err)
	}
	return result, nil
}
