package driving

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// RecommendationService ranks stored tracks by similarity to a query track.
type RecommendationService interface {
	// Recommend returns up to opts.TopK tracks ordered by descending cosine
	// similarity. Unknown query tracks return domain.ErrNotFound.
	Recommend(ctx context.Context, externalID string, opts domain.RecommendOptions) ([]domain.Recommendation, error)
}
