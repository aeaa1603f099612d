// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion path is a chain of small stages:
//
//	SourceResolver -> ClassificationGate -> EmbeddingExtractor -> TrackStore
//
// wired together by IngestionPipeline. BulkSyncCoordinator fans batches out
// to the pipeline, and SimilarityEngine reads the store independently.
//
// Services are pure Go with no CGO dependencies.
package services
