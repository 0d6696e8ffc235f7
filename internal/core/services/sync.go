package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
	"github.com/knowledgeops/kbsync/internal/core/ports/driving"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncRunner = (*SyncOrchestrator)(nil)

// SyncOrchestrator drives one end-to-end sync pass: fetch the corpus,
// classify each document, upload what changed, propagate deletions, and
// persist the manifest exactly once at the end. A single document's
// failure never aborts the run.
type SyncOrchestrator struct {
	source  driven.DocumentSource
	remote  driven.RemoteStore
	tracker *Tracker
	sinks   []driven.SummarySink

	// mirrorDir, when set, receives a local markdown copy of every
	// uploaded document.
	mirrorDir string

	mu      sync.RWMutex
	running bool
	status  driving.RunStatus
}

// NewSyncOrchestrator creates a sync orchestrator. mirrorDir may be empty
// to disable the local article mirror. Summaries are fanned out to every
// sink; sink failures are logged, never fatal.
func NewSyncOrchestrator(
	source driven.DocumentSource,
	remote driven.RemoteStore,
	tracker *Tracker,
	mirrorDir string,
	sinks ...driven.SummarySink,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		source:    source,
		remote:    remote,
		tracker:   tracker,
		sinks:     sinks,
		mirrorDir: mirrorDir,
	}
}

// docOutcome routes a processed document into its summary bucket.
// Per-document errors are converted into outcomes at this boundary
// instead of crossing it.
type docOutcome int

const (
	outcomeUploaded docOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run executes a full sync pass.
func (o *SyncOrchestrator) Run(ctx context.Context) (*domain.RunSummary, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	// Fatal startup errors: corrupt manifest, unreachable source.
	// No mutation has happened yet.
	if err := o.tracker.Load(ctx); err != nil {
		return nil, err
	}

	docs, err := o.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w: %w", domain.ErrSourceUnavailable, err)
	}
	slog.Info("fetched document corpus", "documents", len(docs))

	reporter := NewRunReporter(o.sinks...)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch o.processDocument(ctx, doc) {
		case outcomeUploaded:
			reporter.RecordUploaded(doc.ID)
			o.bumpStatus(false)
		case outcomeSkipped:
			reporter.RecordSkipped(doc.ID)
			o.bumpStatus(false)
		case outcomeFailed:
			reporter.RecordFailed(doc.ID)
			o.bumpStatus(true)
		}
	}

	currentIDs := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		currentIDs[doc.ID] = struct{}{}
	}

	for _, id := range o.tracker.DiffDeletions(currentIDs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := o.deleteDocument(ctx, id); err != nil {
			// The record stays in the manifest so the next run
			// retries the deletion.
			slog.Warn("failed to delete document", "document_id", id, "error", err)
			reporter.RecordFailed(id)
			o.bumpStatus(true)
			continue
		}
		reporter.RecordDeleted(id)
	}

	summary := reporter.Finalize()

	// FINALIZE: the manifest is written exactly once. A failure here
	// invalidates the next run's classification and is fatal.
	if err := o.tracker.Persist(ctx); err != nil {
		return summary, err
	}

	if err := reporter.Persist(ctx, summary); err != nil {
		slog.Warn("failed to persist run summary", "error", err)
	}

	slog.Info("sync run complete",
		"run_id", summary.RunID,
		"uploaded", len(summary.Uploaded),
		"skipped", len(summary.Skipped),
		"failed", len(summary.Failed),
		"deleted", len(summary.Deleted),
		"duration", summary.Duration().Round(0).String(),
	)
	return summary, nil
}

// Status returns the progress of the current run.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.RunStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status := o.status
	status.Running = o.running
	return &status, nil
}

// processDocument handles one document in isolation: classify, mirror,
// upload, attach, commit. Every failure path returns outcomeFailed.
func (o *SyncOrchestrator) processDocument(ctx context.Context, doc domain.Document) docOutcome {
	decision, hash := o.tracker.Classify(doc)

	if decision == domain.DecisionUnchanged {
		// The efficiency invariant: no remote calls for unchanged content.
		slog.Debug("document unchanged", "document_id", doc.ID)
		return outcomeSkipped
	}

	slog.Info("uploading document", "document_id", doc.ID, "decision", decision.String())

	if err := o.mirror(doc); err != nil {
		slog.Warn("failed to mirror document", "document_id", doc.ID, "error", err)
		return outcomeFailed
	}

	prev, replacing := o.tracker.Record(doc.ID)

	remoteFileID, err := o.remote.Upload(ctx, doc)
	if err != nil {
		slog.Warn("upload failed", "document_id", doc.ID, "error", err)
		return outcomeFailed
	}

	if err := o.remote.AttachToIndex(ctx, remoteFileID); err != nil {
		slog.Warn("attach failed", "document_id", doc.ID, "remote_file_id", remoteFileID, "error", err)
		// The uploaded file was never committed; drop it so it does not
		// accumulate as an orphan.
		if delErr := o.remote.Delete(ctx, remoteFileID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			slog.Warn("failed to remove orphaned upload", "remote_file_id", remoteFileID, "error", delErr)
		}
		return outcomeFailed
	}

	// Commit only after the remote operations are confirmed.
	o.tracker.Commit(doc.ID, hash, remoteFileID, true)

	if replacing && prev.RemoteFileID != "" && prev.RemoteFileID != remoteFileID {
		o.retireRemoteFile(ctx, prev)
	}

	return outcomeUploaded
}

// retireRemoteFile detaches and deletes the remote file a re-upload
// replaced. Best effort: the new content is already live and committed.
func (o *SyncOrchestrator) retireRemoteFile(ctx context.Context, prev domain.TrackingRecord) {
	if prev.Indexed {
		if err := o.remote.DetachFromIndex(ctx, prev.RemoteFileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to detach stale file", "remote_file_id", prev.RemoteFileID, "error", err)
		}
	}
	if err := o.remote.Delete(ctx, prev.RemoteFileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("failed to delete stale file", "remote_file_id", prev.RemoteFileID, "error", err)
	}
}

// deleteDocument propagates the disappearance of a document to the remote
// store and, on confirmation, drops its tracking record.
func (o *SyncOrchestrator) deleteDocument(ctx context.Context, documentID string) error {
	rec, ok := o.tracker.Record(documentID)
	if !ok {
		return nil
	}

	slog.Info("deleting document", "document_id", documentID, "remote_file_id", rec.RemoteFileID)

	if rec.Indexed {
		if err := o.remote.DetachFromIndex(ctx, rec.RemoteFileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("detach from index: %w", err)
		}
	}
	if err := o.remote.Delete(ctx, rec.RemoteFileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete remote file: %w", err)
	}

	o.tracker.RemoveRecord(documentID)
	return nil
}

// mirror writes a local markdown copy of the document.
func (o *SyncOrchestrator) mirror(doc domain.Document) error {
	if o.mirrorDir == "" {
		return nil
	}
	if err := os.MkdirAll(o.mirrorDir, 0o755); err != nil {
		return fmt.Errorf("create mirror directory: %w", err)
	}
	path := filepath.Join(o.mirrorDir, doc.ID+".md")
	if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("write mirror file: %w", err)
	}
	return nil
}

func (o *SyncOrchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return domain.ErrSyncInProgress
	}
	o.running = true
	o.status = driving.RunStatus{Running: true}
	return nil
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
	o.status.Running = false
}

func (o *SyncOrchestrator) bumpStatus(failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.DocumentsProcessed++
	if failed {
		o.status.ErrorCount++
	}
}
