package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService looks tracks up by substring.
type SearchService struct {
	store driven.TrackStore
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.TrackStore) *SearchService {
	return &SearchService{store: store}
}

// Search returns tracks whose name or composer contains text.
func (s *SearchService) Search(ctx context.Context, text string, limit int) ([]domain.Track, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidInput, limit)
	}
	if limit == 0 {
		limit = domain.DefaultSearchLimit
	}

	// An empty text matches every track, as the empty substring does.
	text = strings.TrimSpace(text)
	logger.Debug("Search %q (limit %d)", text, limit)

	tracks, err := s.store.SearchBySubstring(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return tracks, nil
}

// Stats returns store counters.
func (s *SearchService) Stats(ctx context.Context) (domain.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}
