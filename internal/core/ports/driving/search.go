package driving

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// SearchService looks tracks up by name or composer.
type SearchService interface {
	// Search returns up to limit tracks whose name or composer contains text.
	// A zero limit uses domain.DefaultSearchLimit.
	Search(ctx context.Context, text string, limit int) ([]domain.Track, error)

	// Stats returns store counters for health reporting.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
