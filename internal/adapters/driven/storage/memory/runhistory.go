package memory

import (
	"context"
	"sync"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure RunHistoryStore implements the interface.
var _ driven.RunHistoryStore = (*RunHistoryStore)(nil)

// RunHistoryStore is an in-memory implementation of driven.RunHistoryStore.
type RunHistoryStore struct {
	mu        sync.RWMutex
	summaries []domain.RunSummary
}

// NewRunHistoryStore creates a new in-memory run history store.
func NewRunHistoryStore() *RunHistoryStore {
	return &RunHistoryStore{}
}

// SaveSummary appends a summary to the history.
func (s *RunHistoryStore) SaveSummary(_ context.Context, summary *domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, *summary)
	return nil
}

// Latest returns the most recently saved summary.
func (s *RunHistoryStore) Latest(_ context.Context) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.summaries) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := s.summaries[len(s.summaries)-1]
	return &latest, nil
}

// History returns up to limit summaries, most recent first.
func (s *RunHistoryStore) History(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunSummary, 0, limit)
	for i := len(s.summaries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.summaries[i])
	}
	return out, nil
}
