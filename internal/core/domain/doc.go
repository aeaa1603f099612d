// Package domain defines the core business entities for Opus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Track: A catalogued audio track keyed by its external identifier
//   - Embedding: The fixed-dimension content vector owned by a Track
//   - TrackInput: A candidate track submitted for ingestion
//   - Recommendation: A ranked similarity result
//   - Settings: Application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
