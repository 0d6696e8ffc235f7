package driven

import (
	"context"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// DocumentSource produces the current snapshot of the document corpus.
type DocumentSource interface {
	// FetchAll returns every document in the corpus. A failure here means
	// the corpus is unreachable or malformed; the run must abort before
	// any mutation.
	FetchAll(ctx context.Context) ([]domain.Document, error)
}
