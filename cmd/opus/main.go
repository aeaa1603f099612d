// Command opus is the genre-gated audio similarity CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/opus/internal/adapters/driven/ai"
	"github.com/custodia-labs/opus/internal/adapters/driven/config/file"
	"github.com/custodia-labs/opus/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/opus/internal/adapters/driving/cli"
	"github.com/custodia-labs/opus/internal/core/services"
	"github.com/custodia-labs/opus/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("Invalid settings, run 'opus settings' for details: %v", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening track store: %w", err)
	}

	defer func() {
		err = errors.Join(err, store.Close())
	}()

	tracks := store.TrackStore()
	svcs := cli.Services{
		Recommend: services.NewSimilarityEngine(tracks),
		Search:    services.NewSearchService(tracks),
		Settings:  settingsService,
	}

	// Bad service URLs disable ingestion but leave settings editable.
	adapters, adapterErr := ai.Create(settings)
	if adapterErr != nil {
		logger.Warn("Ingestion disabled: %v", adapterErr)
	} else {
		defer func() {
			err = errors.Join(err, adapters.Close())
		}()

		pipeline := services.NewIngestionPipeline(
			tracks,
			services.NewClassificationGate(adapters.Classifier, settings.Classifier),
			services.NewSourceResolver(adapters.Archive, settings.Scratch.Dir, settings.Archive.Rows),
			services.NewEmbeddingExtractor(adapters.Embedder, services.NewSeededFallback(settings.Fallback.Seed)),
		)
		svcs.Ingest = pipeline
		svcs.Sync = services.NewBulkSyncCoordinator(tracks, pipeline)
		svcs.Check = func(ctx context.Context) error {
			return ai.ValidateEmbedding(ctx, adapters.Embedder)
		}
	}

	catalog, catalogErr := ai.CreateCatalog(settings)
	switch {
	case catalogErr != nil:
		logger.Warn("Catalogue discovery disabled: %v", catalogErr)
	case catalog != nil:
		svcs.Discover = services.NewCatalogDiscovery(catalog, svcs.Sync)
	}

	cli.SetVersion(version)
	cli.SetServices(svcs)

	return cli.Execute(ctx)
}
