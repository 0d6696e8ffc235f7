package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// RunReporter accumulates per-run counters and produces the durable run
// summary. A document ID lands in exactly one of uploaded, skipped or
// failed: the first recording wins and later ones are ignored.
type RunReporter struct {
	mu        sync.Mutex
	runID     string
	startedAt time.Time
	seen      map[string]struct{}
	uploaded  []string
	skipped   []string
	failed    []string
	deleted   []string
	sinks     []driven.SummarySink
}

// NewRunReporter creates a reporter for a run starting now.
func NewRunReporter(sinks ...driven.SummarySink) *RunReporter {
	return &RunReporter{
		runID:     uuid.NewString(),
		startedAt: time.Now().UTC(),
		seen:      make(map[string]struct{}),
		sinks:     sinks,
	}
}

// RecordUploaded marks a document as uploaded this run.
func (r *RunReporter) RecordUploaded(documentID string) {
	r.record(documentID, &r.uploaded)
}

// RecordSkipped marks a document as unchanged this run.
func (r *RunReporter) RecordSkipped(documentID string) {
	r.record(documentID, &r.skipped)
}

// RecordFailed marks a document's upload or deletion as failed this run.
func (r *RunReporter) RecordFailed(documentID string) {
	r.record(documentID, &r.failed)
}

// RecordDeleted marks a document as deleted from the remote store.
// Deletions concern manifest entries with no current document, so they
// are tracked outside the uploaded/skipped/failed partition.
func (r *RunReporter) RecordDeleted(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, documentID)
}

func (r *RunReporter) record(documentID string, bucket *[]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[documentID]; dup {
		return
	}
	r.seen[documentID] = struct{}{}
	*bucket = append(*bucket, documentID)
}

// Finalize stamps the end time and returns the immutable summary.
func (r *RunReporter) Finalize() *domain.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &domain.RunSummary{
		RunID:     r.runID,
		StartedAt: r.startedAt,
		EndedAt:   time.Now().UTC(),
		Uploaded:  sortedCopy(r.uploaded),
		Skipped:   sortedCopy(r.skipped),
		Failed:    sortedCopy(r.failed),
		Deleted:   sortedCopy(r.deleted),
	}
	return summary
}

// Persist fans the summary out to every sink. Individual sink failures
// are joined and returned for logging; they never invalidate the run.
func (r *RunReporter) Persist(ctx context.Context, summary *domain.RunSummary) error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.SaveSummary(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("save summary: %w", err))
		}
	}
	return errors.Join(errs...)
}

func sortedCopy(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
