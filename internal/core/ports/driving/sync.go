package driving

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// ProgressFunc is called after each batch entry is handled.
type ProgressFunc func(done, total int)

// SyncService ingests batches of candidate tracks.
type SyncService interface {
	// Sync dedups the batch against the store in one query and ingests
	// the remaining entries in order.
	Sync(ctx context.Context, tracks []domain.TrackInput) (domain.SyncReport, error)

	// SyncWithProgress is Sync with a progress callback. A nil progress
	// behaves like Sync.
	SyncWithProgress(ctx context.Context, tracks []domain.TrackInput, progress ProgressFunc) (domain.SyncReport, error)
}
