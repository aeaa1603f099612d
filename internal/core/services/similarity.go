package services

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// Ensure SimilarityEngine implements the interface.
var _ driving.RecommendationService = (*SimilarityEngine)(nil)

// SimilarityEngine ranks every stored track against a query track by cosine
// similarity. It is a brute-force scan over the store.
type SimilarityEngine struct {
	store driven.TrackStore
}

// NewSimilarityEngine creates a similarity engine.
func NewSimilarityEngine(store driven.TrackStore) *SimilarityEngine {
	return &SimilarityEngine{store: store}
}

// Recommend returns up to opts.TopK tracks most similar to the query track,
// never including the query track itself. Results are ordered by score
// descending, then by external ID ascending.
func (e *SimilarityEngine) Recommend(
	ctx context.Context, externalID string, opts domain.RecommendOptions,
) ([]domain.Recommendation, error) {
	logger.Section("Recommendation")
	if opts.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative, got %d", domain.ErrInvalidInput, opts.TopK)
	}

	query, err := e.store.GetEmbedding(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get query embedding %s: %w", externalID, err)
	}
	if opts.TopK == 0 {
		return []domain.Recommendation{}, nil
	}

	candidates, err := e.store.ListOtherEmbeddings(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	logger.Debug("Scoring %d candidates for %s", len(candidates), externalID)

	queryVec := toFloat64(query.Vector)
	queryNorm := floats.Norm(queryVec, 2)

	results := make([]domain.Recommendation, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.Track.ExternalID == externalID {
			continue
		}
		if opts.ExcludeFallback && c.Embedding.Fallback {
			continue
		}
		if len(c.Embedding.Vector) != len(query.Vector) {
			logger.Warn("Skipping %s: embedding has %d dimensions, query has %d",
				c.Track.ExternalID, len(c.Embedding.Vector), len(query.Vector))
			continue
		}

		results = append(results, domain.Recommendation{
			ExternalID: c.Track.ExternalID,
			Name:       c.Track.Name,
			Composer:   c.Track.Composer,
			Score:      cosine(queryVec, queryNorm, toFloat64(c.Embedding.Vector)),
			Fallback:   c.Embedding.Fallback,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ExternalID < results[j].ExternalID
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	logger.Debug("Returning %d recommendations", len(results))
	return results, nil
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is zero.
func CosineSimilarity(a, b []float32) float64 {
	av := toFloat64(a)
	return cosine(av, floats.Norm(av, 2), toFloat64(b))
}

func cosine(query []float64, queryNorm float64, candidate []float64) float64 {
	candNorm := floats.Norm(candidate, 2)
	if queryNorm == 0 || candNorm == 0 {
		return 0
	}
	return floats.Dot(query, candidate) / (queryNorm * candNorm)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
