package domain

// DefaultTopK is the number of recommendations returned when the caller
// does not choose.
const DefaultTopK = 5

// DefaultSearchLimit is the substring search limit used when none is given.
const DefaultSearchLimit = 5

// RecommendOptions controls a similarity query.
type RecommendOptions struct {
	// TopK is the maximum number of results. Zero returns none; negative is invalid.
	TopK int

	// ExcludeFallback drops candidates whose embedding is a fallback vector.
	ExcludeFallback bool
}

// Recommendation is one ranked similarity result.
type Recommendation struct {
	ExternalID string  `json:"track_id"`
	Name       string  `json:"name"`
	Composer   string  `json:"composer"`
	Score      float64 `json:"similarity_score"`
	Fallback   bool    `json:"fallback,omitempty"`
}
