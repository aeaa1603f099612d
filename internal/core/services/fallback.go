package services

import (
	"math/rand/v2"

	"github.com/OneOfOne/xxhash"

	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// Ensure SeededFallback implements the interface.
var _ driven.FallbackVectors = (*SeededFallback)(nil)

// SeededFallback generates uniform [0,1) vectors from a PCG stream seeded by
// the configured seed and a hash of the key. The same seed and key always
// yield the same vector.
//
// Fallback vectors are placeholders for tracks without audio. They have no
// similarity meaning and should be excluded from quality-sensitive
// comparisons.
type SeededFallback struct {
	seed uint64
}

// NewSeededFallback creates a fallback strategy with the given seed.
func NewSeededFallback(seed int64) *SeededFallback {
	return &SeededFallback{seed: uint64(seed)} //nolint:gosec // bit pattern reuse is intended
}

// Vector returns a deterministic vector of the given dimension for key.
func (f *SeededFallback) Vector(key string, dimensions int) []float32 {
	rng := rand.New(rand.NewPCG(f.seed, xxhash.ChecksumString64(key))) //nolint:gosec // not security sensitive
	vec := make([]float32, dimensions)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	return vec
}
