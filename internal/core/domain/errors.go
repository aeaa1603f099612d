package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// The ingestion pipeline treats it as an idempotent success.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates an optional collaborator was not wired in.
	ErrNotConfigured = errors.New("not configured")

	// Ingestion Errors.

	// ErrSourceNotFound indicates no playable audio could be resolved for a track.
	// It is a soft failure: ingestion continues with a fallback embedding.
	ErrSourceNotFound = errors.New("audio source not found")

	// ErrExternalService indicates an archive, classifier or embedding call failed.
	ErrExternalService = errors.New("external service failure")

	// ErrClassificationRejected indicates the genre gate declined a track.
	// This is a normal outcome, not a system error.
	ErrClassificationRejected = errors.New("rejected by classification")

	// ErrPersistence indicates a storage transaction failed and was rolled back.
	ErrPersistence = errors.New("persistence failure")

	// ErrDimensionMismatch indicates a vector does not have the expected dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
