package driven

import "context"

// AudioEmbedder converts a local audio file into a content vector.
// This is an optional service - when nil, every track gets a fallback vector.
//
// Implementations may include:
//   - CLAP (laion/clap-htsat) behind an inference server
//   - Any audio model returning fixed-length vectors
type AudioEmbedder interface {
	// EmbedAudio returns the embedding for the audio file at path.
	EmbedAudio(ctx context.Context, path string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// FallbackVectors produces placeholder vectors when no audio embedding is
// available. Output must be deterministic for a given key so that rankings
// over fallback vectors are reproducible. The values carry no similarity
// meaning.
type FallbackVectors interface {
	// Vector returns a vector of the given dimension for key.
	Vector(key string, dimensions int) []float32
}
