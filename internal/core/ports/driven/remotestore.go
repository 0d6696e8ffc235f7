package driven

import (
	"context"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// RemoteStore is the managed file and index API documents are mirrored
// into. Calls may fail transiently or permanently; the orchestrator does
// not retry — any raised failure is the document's outcome for the run.
type RemoteStore interface {
	// Upload stores the document content remotely and returns the remote
	// file identifier.
	Upload(ctx context.Context, doc domain.Document) (string, error)

	// AttachToIndex makes an uploaded file searchable in the index.
	AttachToIndex(ctx context.Context, remoteFileID string) error

	// DetachFromIndex removes a file from the index. Returns
	// domain.ErrNotFound if the file is not attached.
	DetachFromIndex(ctx context.Context, remoteFileID string) error

	// Delete removes a remote file entirely. Returns domain.ErrNotFound
	// if the file does not exist.
	Delete(ctx context.Context, remoteFileID string) error

	// ListIndexFiles returns the remote file IDs currently attached to
	// the index.
	ListIndexFiles(ctx context.Context) ([]string, error)
}
