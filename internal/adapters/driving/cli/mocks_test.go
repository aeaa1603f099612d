package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/custodia-labs/opus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/core/services"
)

var errMock = errors.New("mock failure")

type mockIngestionService struct {
	outcome domain.IngestOutcome
	err     error
	last    domain.TrackInput
}

func (m *mockIngestionService) AddTrack(_ context.Context, in domain.TrackInput) (domain.IngestOutcome, error) {
	m.last = in
	return m.outcome, m.err
}

type mockSyncService struct {
	report   domain.SyncReport
	err      error
	last     []domain.TrackInput
	progress bool
}

func (m *mockSyncService) Sync(ctx context.Context, tracks []domain.TrackInput) (domain.SyncReport, error) {
	return m.SyncWithProgress(ctx, tracks, nil)
}

func (m *mockSyncService) SyncWithProgress(
	_ context.Context,
	tracks []domain.TrackInput,
	progress driving.ProgressFunc,
) (domain.SyncReport, error) {
	m.last = tracks
	m.progress = progress != nil
	return m.report, m.err
}

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

type testServices struct {
	ingest    *mockIngestionService
	sync      *mockSyncService
	recommend *mockRecommendationService
	search    *mockSearchService
	discover  *mockDiscoveryService
	config    *memory.ConfigStore
}

// setupTestServices installs mock services backed by canned results and a
// real settings service over an in-memory config store.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Ingest:    ingestionService,
		Sync:      syncService,
		Recommend: recommendationService,
		Search:    searchService,
		Settings:  settingsService,
		Discover:  discoveryService,
		Check:     serviceCheck,
	}

	ts := &testServices{
		ingest: &mockIngestionService{outcome: domain.OutcomeAdded},
		sync: &mockSyncService{report: domain.SyncReport{
			RunID: "run-1", Added: 2, Existing: 1, TotalProcessed: 3,
		}},
		recommend: &mockRecommendationService{results: []domain.Recommendation{
			{ExternalID: "t2", Name: "Clair de Lune", Composer: "Debussy", Score: 0.9876},
			{ExternalID: "t3", Name: "Gymnopedie No.1", Composer: "Satie", Score: 0.5, Fallback: true},
		}},
		search: &mockSearchService{
			tracks: []domain.Track{
				{ID: 1, ExternalID: "t1", Name: "Moonlight Sonata", Composer: "Beethoven"},
			},
			stats: domain.StoreStats{Tracks: 3, FallbackEmbeddings: 1},
		},
		discover: &mockDiscoveryService{
			tracks: []domain.CatalogTrack{
				{ID: "sp1", Name: "Gymnopédie No.1", Artist: "Erik Satie"},
				{ID: "sp2", Name: "Clair de lune", Artist: "Claude Debussy"},
			},
			report: domain.SyncReport{RunID: "run-2", Added: 1, Skipped: 1, TotalProcessed: 2},
		},
		config: memory.NewConfigStore(),
	}

	SetServices(Services{
		Ingest:    ts.ingest,
		Sync:      ts.sync,
		Recommend: ts.recommend,
		Search:    ts.search,
		Settings:  services.NewSettingsService(ts.config),
		Discover:  ts.discover,
	})

	return ts, func() { SetServices(old) }
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
