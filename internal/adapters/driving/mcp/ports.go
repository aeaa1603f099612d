package mcp

import (
	"github.com/custodia-labs/opus/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides substring lookup and store statistics.
	Search driving.SearchService

	// Recommend ranks tracks by similarity.
	Recommend driving.RecommendationService

	// Ingest adds single tracks. Optional: without it add_track is not offered.
	Ingest driving.IngestionService

	// Sync ingests batches. Optional: without it sync is not offered.
	Sync driving.SyncService

	// Discover searches the music catalogue. Optional: without it discover
	// is not offered.
	Discover driving.DiscoveryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Recommend == nil {
		return ErrMissingRecommendationService
	}
	return nil
}
