// Package driving defines the primary ports of the sync engine: the
// interfaces the CLI drives the core services through.
package driving

import (
	"context"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// SyncRunner drives one end-to-end synchronisation pass.
type SyncRunner interface {
	// Run executes a full sync pass and returns the run summary.
	// Per-document failures are recorded in the summary, not returned;
	// an error means the run aborted (fetch, manifest load) or the
	// manifest could not be persisted.
	Run(ctx context.Context) (*domain.RunSummary, error)

	// Status returns the progress of the current run, if any.
	Status(ctx context.Context) (*RunStatus, error)
}

// RunStatus is the in-flight progress of a sync run.
type RunStatus struct {
	// Running indicates a run is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents handled so far.
	DocumentsProcessed int

	// ErrorCount is the number of per-document failures so far.
	ErrorCount int
}

// Resetter tears down the remote index and local tracking state.
type Resetter interface {
	// Reset detaches and deletes every file in the remote index and
	// clears the manifest.
	Reset(ctx context.Context) (*ResetResult, error)
}

// ResetResult reports the outcome of a reset.
type ResetResult struct {
	// FilesDeleted is the number of remote files removed.
	FilesDeleted int

	// Failed is the number of remote files that could not be removed.
	Failed int
}
