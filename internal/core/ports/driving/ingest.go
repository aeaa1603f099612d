package driving

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// IngestionService adds single tracks to the catalogue.
type IngestionService interface {
	// AddTrack runs dedup, genre gate, source resolution, embedding and
	// persistence for one track. Outcome.Present() is true when the track
	// is stored afterwards, whether newly added or pre-existing.
	AddTrack(ctx context.Context, in domain.TrackInput) (domain.IngestOutcome, error)
}
