// Package memory provides in-memory implementations of the storage ports.
// They back the service and adapter tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// Ensure TrackStore implements the interface.
var _ driven.TrackStore = (*TrackStore)(nil)

// TrackStore is an in-memory implementation of driven.TrackStore.
// Check-and-insert happens under one lock, which gives the same
// conditional-insert semantics as a unique constraint.
type TrackStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[string]domain.TrackEmbedding
}

// NewTrackStore creates a new in-memory track store.
func NewTrackStore() *TrackStore {
	return &TrackStore{
		nextID: 1,
		byID:   make(map[string]domain.TrackEmbedding),
	}
}

// Exists reports whether a track with the external ID is stored.
func (s *TrackStore) Exists(_ context.Context, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[externalID]
	return ok, nil
}

// ExistsBatch returns the subset of externalIDs that are stored.
func (s *TrackStore) ExistsBatch(_ context.Context, externalIDs []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]struct{})
	for _, id := range externalIDs {
		if _, ok := s.byID[id]; ok {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

// Insert stores the track and embedding together.
func (s *TrackStore) Insert(_ context.Context, track domain.Track, embedding domain.Embedding) (int64, error) {
	if err := embedding.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[track.ExternalID]; ok {
		return 0, domain.ErrAlreadyExists
	}

	track.ID = s.nextID
	s.nextID++
	embedding.TrackID = track.ID
	embedding.Vector = slices.Clone(embedding.Vector)
	s.byID[track.ExternalID] = domain.TrackEmbedding{Track: track, Embedding: embedding}
	return track.ID, nil
}

// GetEmbedding returns the embedding of the track with the external ID.
func (s *TrackStore) GetEmbedding(_ context.Context, externalID string) (*domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	te, ok := s.byID[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	emb := te.Embedding
	emb.Vector = slices.Clone(emb.Vector)
	return &emb, nil
}

// ListOtherEmbeddings returns every stored pair except excludeExternalID,
// ordered by track ID.
func (s *TrackStore) ListOtherEmbeddings(_ context.Context, excludeExternalID string) ([]domain.TrackEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.TrackEmbedding, 0, len(s.byID))
	for id, te := range s.byID {
		if id == excludeExternalID {
			continue
		}
		te.Embedding.Vector = slices.Clone(te.Embedding.Vector)
		result = append(result, te)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Track.ID < result[j].Track.ID })
	return result, nil
}

// SearchBySubstring returns tracks whose name or composer contains text.
func (s *TrackStore) SearchBySubstring(_ context.Context, text string, limit int) ([]domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(text)
	var matches []domain.Track
	for _, te := range s.byID {
		if strings.Contains(strings.ToLower(te.Track.Name), needle) ||
			strings.Contains(strings.ToLower(te.Track.Composer), needle) {
			matches = append(matches, te.Track)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Stats returns store counters.
func (s *TrackStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StoreStats{Tracks: len(s.byID)}
	for _, te := range s.byID {
		if te.Embedding.Fallback {
			stats.FallbackEmbeddings++
		}
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *TrackStore) Close() error {
	return nil
}
