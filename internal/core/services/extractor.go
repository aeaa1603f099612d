package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/logger"
)

// EmbeddingExtractor turns a scratch audio file into an embedding vector.
// It never fails: missing audio and model errors yield a fallback vector
// flagged as low fidelity.
type EmbeddingExtractor struct {
	embedder   driven.AudioEmbedder
	fallback   driven.FallbackVectors
	dimensions int
}

// NewEmbeddingExtractor creates an extractor. The embedder may be nil, in
// which case every extraction falls back. A nil fallback uses SeededFallback
// with the default seed.
func NewEmbeddingExtractor(embedder driven.AudioEmbedder, fallback driven.FallbackVectors) *EmbeddingExtractor {
	if fallback == nil {
		fallback = NewSeededFallback(domain.DefaultFallbackSeed)
	}
	return &EmbeddingExtractor{
		embedder:   embedder,
		fallback:   fallback,
		dimensions: domain.Dimensions,
	}
}

// Extract embeds the audio at path. key seeds the fallback vector so that a
// track always receives the same fallback. The scratch file is deleted after
// the embedder has read it, whether or not embedding succeeded.
func (e *EmbeddingExtractor) Extract(ctx context.Context, path, key string) domain.Vector {
	if path == "" {
		logger.Warn("Audio missing for %s, using fallback embedding", key)
		return e.fallbackVector(key)
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("Audio file %s unavailable, using fallback embedding: %v", path, err)
		return e.fallbackVector(key)
	}
	defer removeScratch(path)

	if e.embedder == nil {
		logger.Warn("Embedding service not configured, using fallback embedding for %s", key)
		return e.fallbackVector(key)
	}

	values, err := e.embedder.EmbedAudio(ctx, path)
	if err == nil && len(values) != e.dimensions {
		err = fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(values), e.dimensions)
	}
	if err != nil {
		logger.Error("Failed to extract embedding for %s: %v", key, err)
		return e.fallbackVector(key)
	}

	return domain.Vector{Values: values}
}

func (e *EmbeddingExtractor) fallbackVector(key string) domain.Vector {
	return domain.Vector{
		Values:   e.fallback.Vector(key, e.dimensions),
		Fallback: true,
	}
}

func removeScratch(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove scratch file %s: %v", path, err)
	}
}
