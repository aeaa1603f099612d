package driven

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// TrackStore persists tracks together with their embeddings.
// Backed by SQLite. Implementations must enforce external_id uniqueness.
type TrackStore interface {
	// Exists reports whether a track with the external ID is stored.
	Exists(ctx context.Context, externalID string) (bool, error)

	// ExistsBatch returns the subset of externalIDs that are stored.
	// It is a single port call regardless of input size.
	ExistsBatch(ctx context.Context, externalIDs []string) (map[string]struct{}, error)

	// Insert stores the track and its embedding in one transaction and
	// returns the assigned track ID. A duplicate external ID returns
	// domain.ErrAlreadyExists and writes nothing. Any other failure rolls
	// back both rows.
	Insert(ctx context.Context, track domain.Track, embedding domain.Embedding) (int64, error)

	// GetEmbedding returns the embedding of the track with the external ID,
	// or domain.ErrNotFound.
	GetEmbedding(ctx context.Context, externalID string) (*domain.Embedding, error)

	// ListOtherEmbeddings returns every stored track and embedding except
	// the one with excludeExternalID.
	ListOtherEmbeddings(ctx context.Context, excludeExternalID string) ([]domain.TrackEmbedding, error)

	// SearchBySubstring returns up to limit tracks whose name or composer
	// contains text, case-insensitively.
	SearchBySubstring(ctx context.Context, text string, limit int) ([]domain.Track, error)

	// Stats returns store counters.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
