package driven

import (
	"context"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// Classifier is a zero-shot text classification capability.
//
// Implementations may include:
//   - Hosted inference endpoints (facebook/bart-large-mnli)
//   - Local inference servers exposing the same request shape
type Classifier interface {
	// Classify scores text against the candidate labels and returns the
	// highest-scoring label with its confidence.
	Classify(ctx context.Context, text string, labels []string) (domain.Classification, error)
}
