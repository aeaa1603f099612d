package domain

import (
	"fmt"
	"strings"
)

// Dimensions is the fixed size of every persisted embedding vector.
const Dimensions = 512

// AudioSource tags where a track's audio came from.
type AudioSource string

// Known audio sources.
const (
	// AudioSourceOpenDataset is audio resolved from an open archive.
	AudioSourceOpenDataset AudioSource = "open_dataset"
)

// IsValid returns true if the audio source is recognised.
func (a AudioSource) IsValid() bool {
	return a == AudioSourceOpenDataset
}

// String returns the string representation.
func (a AudioSource) String() string {
	return string(a)
}

// Track is a catalogued audio track.
// Tracks are created by ingestion and never mutated afterwards.
type Track struct {
	// ID is assigned by the store on insert.
	ID int64

	// ExternalID is the caller-supplied unique key (e.g. an upstream catalogue ID).
	ExternalID string

	// Name is the track title.
	Name string

	// Composer is the composer or performing artist.
	Composer string

	// AudioSource records the provenance of the audio used for the embedding.
	AudioSource AudioSource
}

// Embedding is the content vector owned by exactly one Track.
type Embedding struct {
	// TrackID is the owning track's store ID.
	TrackID int64

	// Vector has length Dimensions.
	Vector []float32

	// Fallback marks a low-fidelity vector generated without real audio.
	// Its values carry no similarity meaning.
	Fallback bool
}

// Validate checks the vector has the persisted dimension.
func (e Embedding) Validate() error {
	if len(e.Vector) != Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(e.Vector), Dimensions)
	}
	return nil
}

// TrackEmbedding pairs a stored track with its embedding.
type TrackEmbedding struct {
	Track     Track
	Embedding Embedding
}

// TrackInput is a candidate track submitted for ingestion.
type TrackInput struct {
	ExternalID string `json:"track_id"`
	Name       string `json:"name"`
	Composer   string `json:"composer"`
}

// Validate reports whether the input can be ingested.
func (t TrackInput) Validate() error {
	if strings.TrimSpace(t.ExternalID) == "" {
		return fmt.Errorf("%w: track id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: track name is required", ErrInvalidInput)
	}
	return nil
}

// Vector is the output of embedding extraction.
type Vector struct {
	Values []float32

	// Fallback is true when Values came from the fallback strategy.
	Fallback bool
}

// StoreStats summarises the contents of the track store.
type StoreStats struct {
	Tracks             int `json:"track_count"`
	FallbackEmbeddings int `json:"fallback_embedding_count"`
}
