package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// Ensure BulkSyncCoordinator implements the interface.
var _ driving.SyncService = (*BulkSyncCoordinator)(nil)

// BulkSyncCoordinator dedups a batch against the store and fans the
// remaining entries out to the ingestion pipeline, one at a time.
type BulkSyncCoordinator struct {
	store    driven.TrackStore
	pipeline driving.IngestionService
}

// NewBulkSyncCoordinator creates a coordinator.
func NewBulkSyncCoordinator(store driven.TrackStore, pipeline driving.IngestionService) *BulkSyncCoordinator {
	return &BulkSyncCoordinator{
		store:    store,
		pipeline: pipeline,
	}
}

// Sync ingests tracks in order.
//
// Membership is computed once, up front. Duplicates within the same batch
// are therefore not caught here: the second occurrence goes through the
// pipeline, whose own existence check sees the first occurrence's commit.
// That occurrence reports present and is counted as added.
func (c *BulkSyncCoordinator) Sync(ctx context.Context, tracks []domain.TrackInput) (domain.SyncReport, error) {
	return c.SyncWithProgress(ctx, tracks, nil)
}

// SyncWithProgress is Sync with a callback invoked after every entry.
func (c *BulkSyncCoordinator) SyncWithProgress(
	ctx context.Context, tracks []domain.TrackInput, progress driving.ProgressFunc,
) (domain.SyncReport, error) {
	if len(tracks) == 0 {
		return domain.SyncReport{}, nil
	}

	report := domain.SyncReport{
		RunID:          uuid.NewString(),
		TotalProcessed: len(tracks),
	}
	log := logger.With("run", report.RunID)
	log.Info("Starting sync of %d tracks", len(tracks))

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ExternalID
	}
	existing, err := c.store.ExistsBatch(ctx, ids)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("%w: batch existence check: %w", domain.ErrPersistence, err)
	}

	for i, t := range tracks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if _, ok := existing[t.ExternalID]; ok {
			report.Existing++
		} else {
			outcome, err := c.pipeline.AddTrack(ctx, t)
			switch {
			case outcome.Present():
				report.Added++
			case err != nil:
				log.Warn("Failed to ingest %s: %v", t.ExternalID, err)
				report.Skipped++
			default:
				log.Debug("Skipped %s: %s", t.ExternalID, outcome)
				report.Skipped++
			}
		}

		if progress != nil {
			progress(i+1, len(tracks))
		}
	}

	log.Info("Sync complete: %d added, %d existing, %d skipped",
		report.Added, report.Existing, report.Skipped)
	return report, nil
}
