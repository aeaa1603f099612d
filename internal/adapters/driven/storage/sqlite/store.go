package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sqlitedrv "modernc.org/sqlite"

	"github.com/custodia-labs/opus/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// existsBatchSize bounds the number of bound parameters per IN clause.
const existsBatchSize = 500

// foldFunc is a Unicode-aware replacement for SQLite's ASCII-only lower().
const foldFunc = "opus_fold"

func init() {
	sqlitedrv.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Store is a SQLite-based storage that provides access to the track store
// interface through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.opus/data/tracks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".opus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tracks.db")

	// WAL lets readers proceed during ingestion; immediate transactions take
	// the write lock up front so concurrent inserts wait instead of failing.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TrackStore returns a TrackStore interface backed by this store.
func (s *Store) TrackStore() driven.TrackStore {
	return &trackStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Track Store ====================

// trackStore implements driven.TrackStore.
type trackStore struct {
	store *Store
}

var _ driven.TrackStore = (*trackStore)(nil)

// Exists reports whether a track with the external ID is stored.
func (s *trackStore) Exists(ctx context.Context, externalID string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM tracks WHERE external_id = ?", externalID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking track: %w", err)
	}
	return true, nil
}

// ExistsBatch returns the subset of externalIDs that are stored. Large inputs
// are split into chunks to stay under the bound parameter limit.
func (s *trackStore) ExistsBatch(ctx context.Context, externalIDs []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	for start := 0; start < len(externalIDs); start += existsBatchSize {
		end := min(start+existsBatchSize, len(externalIDs))
		chunk := externalIDs[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		//nolint:gosec // G202: placeholders only, values are bound
		rows, err := s.store.db.QueryContext(ctx,
			"SELECT external_id FROM tracks WHERE external_id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, fmt.Errorf("checking tracks: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning track id: %w", err)
			}
			found[id] = struct{}{}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating tracks: %w", err)
		}
	}
	return found, nil
}

// Insert stores the track and its embedding in one transaction.
func (s *trackStore) Insert(ctx context.Context, track domain.Track, embedding domain.Embedding) (int64, error) {
	if err := embedding.Validate(); err != nil {
		return 0, err
	}
	return s.insert(ctx, track, len(embedding.Vector), float32SliceToBytes(embedding.Vector), embedding.Fallback)
}

func (s *trackStore) insert(
	ctx context.Context, track domain.Track, dimensions int, blob []byte, fallback bool,
) (int64, error) {
	source := track.AudioSource
	if source == "" {
		source = domain.AudioSourceOpenDataset
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tracks (external_id, name, composer, audio_source)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING
		RETURNING id
	`, track.ExternalID, track.Name, track.Composer, source.String()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrAlreadyExists
	}
	if err != nil {
		return 0, fmt.Errorf("inserting track: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO embeddings (track_id, dimensions, vector, fallback)
		VALUES (?, ?, ?, ?)
	`, id, dimensions, blob, boolToInt(fallback)); err != nil {
		return 0, fmt.Errorf("inserting embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// GetEmbedding returns the embedding of the track with the external ID.
func (s *trackStore) GetEmbedding(ctx context.Context, externalID string) (*domain.Embedding, error) {
	var (
		emb      domain.Embedding
		blob     []byte
		fallback int
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT e.track_id, e.vector, e.fallback
		FROM embeddings e JOIN tracks t ON t.id = e.track_id
		WHERE t.external_id = ?
	`, externalID).Scan(&emb.TrackID, &blob, &fallback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting embedding: %w", err)
	}
	emb.Vector = bytesToFloat32Slice(blob)
	emb.Fallback = fallback != 0
	return &emb, nil
}

// ListOtherEmbeddings returns every stored pair except excludeExternalID,
// ordered by track ID.
func (s *trackStore) ListOtherEmbeddings(
	ctx context.Context, excludeExternalID string,
) ([]domain.TrackEmbedding, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.id, t.external_id, t.name, t.composer, t.audio_source, e.vector, e.fallback
		FROM tracks t JOIN embeddings e ON e.track_id = t.id
		WHERE t.external_id != ?
		ORDER BY t.id
	`, excludeExternalID)
	if err != nil {
		return nil, fmt.Errorf("listing embeddings: %w", err)
	}
	defer rows.Close()

	var result []domain.TrackEmbedding
	for rows.Next() {
		var (
			te       domain.TrackEmbedding
			source   string
			blob     []byte
			fallback int
		)
		if err := rows.Scan(&te.Track.ID, &te.Track.ExternalID, &te.Track.Name, &te.Track.Composer,
			&source, &blob, &fallback); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		te.Track.AudioSource = domain.AudioSource(source)
		te.Embedding = domain.Embedding{
			TrackID:  te.Track.ID,
			Vector:   bytesToFloat32Slice(blob),
			Fallback: fallback != 0,
		}
		result = append(result, te)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return result, nil
}

// SearchBySubstring returns tracks whose name or composer contains text.
// Matching is case-insensitive over all of Unicode. LIKE wildcards in text
// are matched literally.
func (s *trackStore) SearchBySubstring(ctx context.Context, text string, limit int) ([]domain.Track, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, external_id, name, composer, audio_source
		FROM tracks
		WHERE opus_fold(name) LIKE ? ESCAPE '\' OR opus_fold(composer) LIKE ? ESCAPE '\'
		ORDER BY id
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		var (
			t      domain.Track
			source string
		)
		if err := rows.Scan(&t.ID, &t.ExternalID, &t.Name, &t.Composer, &source); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		t.AudioSource = domain.AudioSource(source)
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracks: %w", err)
	}
	return tracks, nil
}

// Stats returns store counters.
func (s *trackStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tracks),
			(SELECT COUNT(*) FROM embeddings WHERE fallback = 1)
	`).Scan(&stats.Tracks, &stats.FallbackEmbeddings)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting tracks: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *trackStore) Close() error {
	return s.store.Close()
}

// ==================== Helpers ====================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
