package domain

// IngestOutcome is the terminal state of one ingestion attempt.
type IngestOutcome string

// Terminal ingestion states.
const (
	// OutcomeAdded means the track and its embedding were stored.
	OutcomeAdded IngestOutcome = "added"

	// OutcomeExisting means the track was already present; nothing was written.
	OutcomeExisting IngestOutcome = "existing"

	// OutcomeRejected means the classification gate declined the track.
	OutcomeRejected IngestOutcome = "rejected"

	// OutcomeFailed means validation or persistence failed; nothing was written.
	OutcomeFailed IngestOutcome = "failed"
)

// Present reports whether the track is in the store after the attempt.
func (o IngestOutcome) Present() bool {
	return o == OutcomeAdded || o == OutcomeExisting
}

// String returns the string representation.
func (o IngestOutcome) String() string {
	return string(o)
}

// SyncReport summarises one bulk synchronisation run.
type SyncReport struct {
	// RunID correlates log lines for the run.
	RunID string `json:"run_id,omitempty"`

	// Added counts entries the pipeline reported as present.
	Added int `json:"added"`

	// Existing counts entries found by the upfront batch membership query.
	Existing int `json:"existing"`

	// Skipped counts entries that were rejected or failed.
	Skipped int `json:"skipped"`

	// TotalProcessed is the number of input entries.
	TotalProcessed int `json:"total_processed"`
}
