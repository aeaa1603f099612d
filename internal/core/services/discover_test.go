package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/opus/internal/core/domain"
)

func catalogHits() []domain.CatalogTrack {
	return []domain.CatalogTrack{
		{ID: "sp1", Name: "Gymnopédie No.1", Artist: "Erik Satie", Album: "Gymnopédies"},
		{ID: "", Name: "Untitled", Artist: "Unknown"},
		{ID: "sp2", Name: "Clair de lune", Artist: "Claude Debussy"},
	}
}

func TestCatalogDiscovery_Discover(t *testing.T) {
	catalog := &mockCatalog{tracks: catalogHits()}
	d := NewCatalogDiscovery(catalog, nil)

	tracks, err := d.Discover(context.Background(), "  satie  ", 10)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "sp1", tracks[0].ID)
	assert.Equal(t, "sp2", tracks[1].ID)
	assert.Equal(t, "satie", catalog.lastQuery)
	assert.Equal(t, 10, catalog.lastLimit)
	assert.Len(t, catalog.tracks, 3, "catalogue result must not be modified")
}

func TestCatalogDiscovery_DiscoverLimits(t *testing.T) {
	catalog := &mockCatalog{}
	d := NewCatalogDiscovery(catalog, nil)
	ctx := context.Background()

	_, err := d.Discover(ctx, "satie", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalogLimit, catalog.lastLimit)

	_, err = d.Discover(ctx, "satie", 500)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxCatalogLimit, catalog.lastLimit)

	_, err = d.Discover(ctx, "satie", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogDiscovery_DiscoverTruncatesToLimit(t *testing.T) {
	d := NewCatalogDiscovery(&mockCatalog{tracks: catalogHits()}, nil)

	tracks, err := d.Discover(context.Background(), "piano", 1)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "sp1", tracks[0].ID)
}

func TestCatalogDiscovery_DiscoverRequiresQuery(t *testing.T) {
	catalog := &mockCatalog{}
	d := NewCatalogDiscovery(catalog, nil)

	_, err := d.Discover(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, catalog.lastQuery)
}

func TestCatalogDiscovery_DiscoverCatalogError(t *testing.T) {
	d := NewCatalogDiscovery(&mockCatalog{err: errBoom}, nil)

	_, err := d.Discover(context.Background(), "satie", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestCatalogDiscovery_DiscoverAndSync(t *testing.T) {
	sync := &recordingSync{report: domain.SyncReport{RunID: "run", Added: 1, Skipped: 1, TotalProcessed: 2}}
	d := NewCatalogDiscovery(&mockCatalog{tracks: catalogHits()}, sync)

	result, err := d.DiscoverAndSync(context.Background(), "piano", 5)
	require.NoError(t, err)
	assert.Len(t, result.Tracks, 2)
	assert.Equal(t, 1, result.Report.Added)
	assert.Equal(t, []domain.TrackInput{
		{ExternalID: "sp1", Name: "Gymnopédie No.1", Composer: "Erik Satie"},
		{ExternalID: "sp2", Name: "Clair de lune", Composer: "Claude Debussy"},
	}, sync.got)
}

func TestCatalogDiscovery_DiscoverAndSyncNoHits(t *testing.T) {
	sync := &recordingSync{}
	d := NewCatalogDiscovery(&mockCatalog{}, sync)

	result, err := d.DiscoverAndSync(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Tracks)
	assert.Nil(t, sync.got)
}

func TestCatalogDiscovery_DiscoverAndSyncWithoutSync(t *testing.T) {
	d := NewCatalogDiscovery(&mockCatalog{tracks: catalogHits()}, nil)

	_, err := d.DiscoverAndSync(context.Background(), "piano", 5)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestCatalogDiscovery_DiscoverAndSyncStoresAcceptedTracks(t *testing.T) {
	store := memory.NewTrackStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, domain.Track{ExternalID: "sp2", Name: "Clair de lune", Composer: "Claude Debussy"},
		domain.Embedding{Vector: unitVector(1)})
	require.NoError(t, err)

	pipeline := newTestPipeline(t, store, acceptAll(), nil, nil)
	d := NewCatalogDiscovery(&mockCatalog{tracks: catalogHits()}, NewBulkSyncCoordinator(store, pipeline))

	result, err := d.DiscoverAndSync(ctx, "piano", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.Added)
	assert.Equal(t, 1, result.Report.Existing)
	assert.Equal(t, 2, result.Report.TotalProcessed)

	exists, err := store.Exists(ctx, "sp1")
	require.NoError(t, err)
	assert.True(t, exists)
}
