package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	stdsync "sync"

	"github.com/custodia-labs/opus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
)

// --- Mock implementations shared by the service tests ---

// mockArchive implements driven.Archive for testing.
type mockArchive struct {
	mu          stdsync.Mutex
	hits        []domain.ArchiveHit
	searchErr   error
	files       map[string][]domain.ArchiveFile
	metadataErr map[string]error
	content     []byte
	downloadErr error
	// partial is written before downloadErr is returned.
	partial []byte

	queries   []string
	downloads []string
}

func (m *mockArchive) Search(_ context.Context, query string, _ int) ([]domain.ArchiveHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.hits, m.searchErr
}

func (m *mockArchive) Metadata(_ context.Context, identifier string) ([]domain.ArchiveFile, error) {
	if err := m.metadataErr[identifier]; err != nil {
		return nil, err
	}
	return m.files[identifier], nil
}

func (m *mockArchive) Download(_ context.Context, identifier, filename string, w io.Writer) error {
	m.mu.Lock()
	m.downloads = append(m.downloads, identifier+"/"+filename)
	m.mu.Unlock()
	if m.downloadErr != nil {
		if len(m.partial) > 0 {
			_, _ = w.Write(m.partial)
		}
		return m.downloadErr
	}
	_, err := io.Copy(w, bytes.NewReader(m.content))
	return err
}

// mockClassifier implements driven.Classifier for testing.
type mockClassifier struct {
	mu     stdsync.Mutex
	result domain.Classification
	err    error
	// byText overrides result when the text contains the key.
	byText map[string]domain.Classification

	texts  []string
	labels [][]string
}

func (m *mockClassifier) Classify(_ context.Context, text string, labels []string) (domain.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	m.labels = append(m.labels, labels)
	if m.err != nil {
		return domain.Classification{}, m.err
	}
	for key, c := range m.byText {
		if strings.Contains(text, key) {
			return c, nil
		}
	}
	return m.result, nil
}

func (m *mockClassifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func acceptAll() *mockClassifier {
	return &mockClassifier{result: domain.Classification{Label: domain.DefaultTargetLabel, Score: 0.95}}
}

// mockEmbedder implements driven.AudioEmbedder for testing.
type mockEmbedder struct {
	vector []float32
	err    error
	paths  []string
}

func (m *mockEmbedder) EmbedAudio(_ context.Context, path string) ([]float32, error) {
	m.paths = append(m.paths, path)
	return m.vector, m.err
}

func (m *mockEmbedder) Dimensions() int              { return len(m.vector) }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockCatalog implements driven.Catalog for testing.
type mockCatalog struct {
	tracks    []domain.CatalogTrack
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockCatalog) SearchTracks(_ context.Context, query string, limit int) ([]domain.CatalogTrack, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.tracks, m.err
}

// recordingSync implements driving.SyncService and records the batch it got.
type recordingSync struct {
	report domain.SyncReport
	err    error
	got    []domain.TrackInput
}

func (r *recordingSync) Sync(_ context.Context, tracks []domain.TrackInput) (domain.SyncReport, error) {
	r.got = tracks
	return r.report, r.err
}

func (r *recordingSync) SyncWithProgress(
	ctx context.Context, tracks []domain.TrackInput, _ driving.ProgressFunc,
) (domain.SyncReport, error) {
	return r.Sync(ctx, tracks)
}

// failingStore wraps the memory store and injects failures.
type failingStore struct {
	*memory.TrackStore
	existsErr      error
	existsBatchErr error
	insertErr      error
	// existsFalse forces Exists to report false so a racing insert can be simulated.
	existsFalse bool
}

func (s *failingStore) Exists(ctx context.Context, externalID string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.existsFalse {
		return false, nil
	}
	return s.TrackStore.Exists(ctx, externalID)
}

func (s *failingStore) ExistsBatch(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if s.existsBatchErr != nil {
		return nil, s.existsBatchErr
	}
	return s.TrackStore.ExistsBatch(ctx, ids)
}

func (s *failingStore) Insert(ctx context.Context, track domain.Track, emb domain.Embedding) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	return s.TrackStore.Insert(ctx, track, emb)
}

var _ driven.TrackStore = (*failingStore)(nil)

var errBoom = errors.New("boom")

// unitVector returns a Dimensions-long vector with the given leading values.
func unitVector(values ...float32) []float32 {
	v := make([]float32, domain.Dimensions)
	copy(v, values)
	return v
}
