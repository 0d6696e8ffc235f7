package driven

import (
	"context"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// SummarySink accepts finalized run summaries for persistence. Sink
// failures are logged and never invalidate the run's remote-side effects.
type SummarySink interface {
	// SaveSummary persists a finalized summary.
	SaveSummary(ctx context.Context, summary *domain.RunSummary) error
}

// RunHistoryStore persists run summaries and serves them back for
// operational inspection.
type RunHistoryStore interface {
	SummarySink

	// Latest returns the most recent run summary, or domain.ErrNotFound
	// if no run has been recorded.
	Latest(ctx context.Context) (*domain.RunSummary, error)

	// History returns up to limit summaries, most recent first.
	History(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
