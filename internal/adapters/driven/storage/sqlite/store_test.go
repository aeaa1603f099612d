package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, driven.TrackStore) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store, store.TrackStore()
}

func vector(values ...float32) []float32 {
	v := make([]float32, domain.Dimensions)
	copy(v, values)
	return v
}

func insertTrack(t *testing.T, ts driven.TrackStore, id, name, composer string, fallback bool) int64 {
	t.Helper()
	rowID, err := ts.Insert(context.Background(),
		domain.Track{ExternalID: id, Name: name, Composer: composer, AudioSource: domain.AudioSourceOpenDataset},
		domain.Embedding{Vector: vector(1, 2, 3), Fallback: fallback})
	require.NoError(t, err)
	return rowID
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "tracks.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsRecordedOnce(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTrackStore_InsertAndGetEmbedding(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)

	id := insertTrack(t, ts, "t1", "Symphony No.5", "Beethoven", false)
	assert.Positive(t, id)

	emb, err := ts.GetEmbedding(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, id, emb.TrackID)
	assert.Equal(t, vector(1, 2, 3), emb.Vector)
	assert.False(t, emb.Fallback)
}

func TestTrackStore_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "t1", "a", "b", false)

	_, err := ts.Insert(ctx, domain.Track{ExternalID: "t1", Name: "other"}, domain.Embedding{Vector: vector(9)})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	emb, err := ts.GetEmbedding(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, vector(1, 2, 3), emb.Vector)
}

func TestTrackStore_InsertRejectsWrongDimension(t *testing.T) {
	_, ts := setupTestStore(t)

	_, err := ts.Insert(context.Background(), domain.Track{ExternalID: "t1", Name: "a"},
		domain.Embedding{Vector: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestTrackStore_InsertRollsBackOnEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	impl := ts.(*trackStore)

	// A truncated blob violates the embeddings CHECK after the track row is written.
	_, err := impl.insert(ctx, domain.Track{ExternalID: "t1", Name: "a"}, domain.Dimensions, []byte{1, 2, 3, 4}, false)
	require.Error(t, err)

	exists, err := ts.Exists(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, exists)

	stats, err := ts.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Tracks)
}

func TestTrackStore_ConcurrentInsertSameKey(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ts.Insert(ctx, domain.Track{ExternalID: "same", Name: "a"},
				domain.Embedding{Vector: vector(float32(i))})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)

	stats, err := ts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tracks)
}

func TestTrackStore_Exists(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "t1", "a", "b", false)

	exists, err := ts.Exists(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ts.Exists(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTrackStore_ExistsBatchChunks(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "id-3", "a", "b", false)
	insertTrack(t, ts, "id-1100", "a", "b", false)

	ids := make([]string, 1200)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}

	found, err := ts.ExistsBatch(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"id-3": {}, "id-1100": {}}, found)

	found, err = ts.ExistsBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTrackStore_GetEmbeddingNotFound(t *testing.T) {
	_, ts := setupTestStore(t)
	_, err := ts.GetEmbedding(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrackStore_ListOtherEmbeddings(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "a", "A", "x", false)
	insertTrack(t, ts, "b", "B", "x", true)
	insertTrack(t, ts, "c", "C", "y", false)

	others, err := ts.ListOtherEmbeddings(ctx, "a")
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, "b", others[0].Track.ExternalID)
	assert.True(t, others[0].Embedding.Fallback)
	assert.Equal(t, domain.AudioSourceOpenDataset, others[0].Track.AudioSource)
	assert.Equal(t, "c", others[1].Track.ExternalID)
	assert.Len(t, others[1].Embedding.Vector, domain.Dimensions)
}

func TestTrackStore_SearchBySubstring(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "1", "Symphony No.5", "Beethoven", false)
	insertTrack(t, ts, "2", "Moonlight Sonata", "Beethoven", false)
	insertTrack(t, ts, "3", "100% Bach", "Bach", false)

	tracks, err := ts.SearchBySubstring(ctx, "BEETH", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "1", tracks[0].ExternalID)

	tracks, err = ts.SearchBySubstring(ctx, "sonata", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Moonlight Sonata", tracks[0].Name)

	tracks, err = ts.SearchBySubstring(ctx, "%", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "3", tracks[0].ExternalID)

	tracks, err = ts.SearchBySubstring(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
}

func TestTrackStore_SearchBySubstringFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "1", "Gymnopédie No.1", "Érik Satie", false)
	insertTrack(t, ts, "2", "Clair de lune", "Debussy", false)

	tracks, err := ts.SearchBySubstring(ctx, "érik", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1", tracks[0].ExternalID)

	tracks, err = ts.SearchBySubstring(ctx, "GYMNOPÉDIE", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Érik Satie", tracks[0].Composer)
}

func TestFold(t *testing.T) {
	v, err := fold(nil, []driver.Value{"ÉRIK"})
	require.NoError(t, err)
	assert.Equal(t, "érik", v)

	v, err = fold(nil, []driver.Value{[]byte("Ä")})
	require.NoError(t, err)
	assert.Equal(t, "ä", v)

	v, err = fold(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTrackStore_Stats(t *testing.T) {
	ctx := context.Background()
	_, ts := setupTestStore(t)
	insertTrack(t, ts, "1", "a", "x", true)
	insertTrack(t, ts, "2", "b", "x", false)

	stats, err := ts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{Tracks: 2, FallbackEmbeddings: 1}, stats)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
