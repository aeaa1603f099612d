package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	tracks    []domain.Track
	stats     domain.StoreStats
	err       error
	lastText  string
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, text string, limit int) ([]domain.Track, error) {
	m.lastText = text
	m.lastLimit = limit
	return m.tracks, m.err
}

func (m *mockSearchService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	results  []domain.Recommendation
	err      error
	lastID   string
	lastOpts domain.RecommendOptions
}

func (m *mockRecommendationService) Recommend(
	_ context.Context,
	externalID string,
	opts domain.RecommendOptions,
) ([]domain.Recommendation, error) {
	m.lastID = externalID
	m.lastOpts = opts
	return m.results, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	outcome domain.IngestOutcome
	err     error
	last    domain.TrackInput
}

func (m *mockIngestionService) AddTrack(_ context.Context, in domain.TrackInput) (domain.IngestOutcome, error) {
	m.last = in
	return m.outcome, m.err
}

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	report domain.SyncReport
	err    error
	last   []domain.TrackInput
}

func (m *mockSyncService) Sync(ctx context.Context, tracks []domain.TrackInput) (domain.SyncReport, error) {
	return m.SyncWithProgress(ctx, tracks, nil)
}

func (m *mockSyncService) SyncWithProgress(
	_ context.Context,
	tracks []domain.TrackInput,
	_ driving.ProgressFunc,
) (domain.SyncReport, error) {
	m.last = tracks
	return m.report, m.err
}

// mockDiscoveryService is a mock implementation of driving.DiscoveryService.
type mockDiscoveryService struct {
	tracks    []domain.CatalogTrack
	report    domain.SyncReport
	err       error
	lastQuery string
	lastLimit int
	synced    bool
}

func (m *mockDiscoveryService) Discover(_ context.Context, query string, limit int) ([]domain.CatalogTrack, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.tracks, m.err
}

func (m *mockDiscoveryService) DiscoverAndSync(
	ctx context.Context, query string, limit int,
) (domain.DiscoveryResult, error) {
	m.synced = true
	tracks, err := m.Discover(ctx, query, limit)
	if err != nil {
		return domain.DiscoveryResult{}, err
	}
	return domain.DiscoveryResult{Tracks: tracks, Report: m.report}, nil
}

// mockCatalog implements driven.Catalog for testing.
type mockCatalog struct {
	tracks []domain.CatalogTrack
}

func (m *mockCatalog) SearchTracks(_ context.Context, _ string, _ int) ([]domain.CatalogTrack, error) {
	return m.tracks, nil
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
