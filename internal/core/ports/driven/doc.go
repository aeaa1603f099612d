// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TrackStore: Track and embedding persistence (SQLite)
//   - Classifier: Zero-shot genre classification
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades to fallback vectors:
//
//   - Archive: Open audio archive. Without it no audio is ever resolved.
//   - AudioEmbedder: Audio embedding model. Without it every track gets a fallback vector.
//
// FallbackVectors always has a default (seeded) implementation.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
