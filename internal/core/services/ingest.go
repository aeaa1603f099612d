package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// IngestionPipeline adds one track at a time:
// dedup, genre gate, source resolution, embedding, persistence.
//
// The pipeline holds no per-request state, so one instance may serve
// concurrent callers. The same external ID submitted concurrently is settled
// by the store's unique constraint.
type IngestionPipeline struct {
	store     driven.TrackStore
	gate      *ClassificationGate
	resolver  *SourceResolver
	extractor *EmbeddingExtractor
}

// NewIngestionPipeline creates a pipeline from its stages.
func NewIngestionPipeline(
	store driven.TrackStore,
	gate *ClassificationGate,
	resolver *SourceResolver,
	extractor *EmbeddingExtractor,
) *IngestionPipeline {
	return &IngestionPipeline{
		store:     store,
		gate:      gate,
		resolver:  resolver,
		extractor: extractor,
	}
}

// AddTrack ingests one track.
//
// Outcomes:
//   - OutcomeExisting, nil: the external ID was already stored (including
//     when a concurrent insert won the race).
//   - OutcomeRejected, nil: the genre gate declined; nothing was written.
//   - OutcomeAdded, nil: track and embedding were committed together.
//   - OutcomeFailed, err: invalid input or a persistence failure; nothing
//     was written.
func (p *IngestionPipeline) AddTrack(ctx context.Context, in domain.TrackInput) (domain.IngestOutcome, error) {
	if err := in.Validate(); err != nil {
		return domain.OutcomeFailed, err
	}
	log := logger.With("track", in.ExternalID)

	exists, err := p.store.Exists(ctx, in.ExternalID)
	if err != nil {
		log.Error("Existence check failed: %v", err)
		return domain.OutcomeFailed, fmt.Errorf("%w: existence check: %w", domain.ErrPersistence, err)
	}
	if exists {
		log.Info("Track already exists")
		return domain.OutcomeExisting, nil
	}

	if !p.gate.Accepts(ctx, in.Name, in.Composer, "") {
		log.Info("Skipping track outside target genre: %s by %s", in.Name, in.Composer)
		return domain.OutcomeRejected, nil
	}

	audioPath, err := p.resolver.Resolve(ctx, in.Composer, in.Name, in.ExternalID)
	if err != nil {
		log.Debug("No audio resolved: %v", err)
		audioPath = ""
	}

	vector := p.extractor.Extract(ctx, audioPath, in.ExternalID)
	if vector.Fallback {
		log.Warn("Storing low-fidelity fallback embedding")
	}

	track := domain.Track{
		ExternalID:  in.ExternalID,
		Name:        in.Name,
		Composer:    in.Composer,
		AudioSource: domain.AudioSourceOpenDataset,
	}
	embedding := domain.Embedding{
		Vector:   vector.Values,
		Fallback: vector.Fallback,
	}

	id, err := p.store.Insert(ctx, track, embedding)
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info("Track stored concurrently, treating as existing")
		return domain.OutcomeExisting, nil
	}
	if err != nil {
		log.Error("Failed to add track: %v", err)
		return domain.OutcomeFailed, fmt.Errorf("%w: insert track: %w", domain.ErrPersistence, err)
	}

	log.Info("Added track %s by %s (id %d)", in.Name, in.Composer, id)
	return domain.OutcomeAdded, nil
}
