package domain

import "time"

// RunSummary is the durable accounting for one sync run. The uploaded,
// skipped and failed sets partition the fetched document set; deleted is
// tracked separately since it concerns manifest entries with no current
// document.
type RunSummary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// EndedAt is when the run finished. Zero until finalized.
	EndedAt time.Time `json:"ended_at"`

	// Uploaded holds IDs of documents uploaded (new or updated) this run.
	Uploaded []string `json:"uploaded"`

	// Skipped holds IDs whose content was unchanged.
	Skipped []string `json:"skipped"`

	// Failed holds IDs whose upload or deletion failed.
	Failed []string `json:"failed"`

	// Deleted holds IDs removed from the remote store this run.
	Deleted []string `json:"deleted"`
}

// Duration returns the wall-clock duration of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
