package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
	"github.com/knowledgeops/kbsync/internal/core/ports/driving"
)

// Ensure Resetter implements the interface.
var _ driving.Resetter = (*Resetter)(nil)

// Resetter removes every file from the remote index and clears the
// manifest, returning the corpus to an untracked state.
type Resetter struct {
	remote  driven.RemoteStore
	tracker *Tracker
}

// NewResetter creates a resetter.
func NewResetter(remote driven.RemoteStore, tracker *Tracker) *Resetter {
	return &Resetter{remote: remote, tracker: tracker}
}

// Reset detaches and deletes every file listed in the remote index, then
// persists an empty manifest. Files that fail to delete are counted and
// left for a later attempt.
func (r *Resetter) Reset(ctx context.Context) (*driving.ResetResult, error) {
	ids, err := r.remote.ListIndexFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list index files: %w", err)
	}

	result := &driving.ResetResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.remote.DetachFromIndex(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to detach file", "remote_file_id", id, "error", err)
			result.Failed++
			continue
		}
		if err := r.remote.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to delete file", "remote_file_id", id, "error", err)
			result.Failed++
			continue
		}
		result.FilesDeleted++
	}

	if err := r.tracker.Clear(ctx); err != nil {
		return result, fmt.Errorf("clear manifest: %w", err)
	}

	slog.Info("reset complete", "deleted", result.FilesDeleted, "failed", result.Failed)
	return result, nil
}
