package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptManifest indicates the persisted manifest is unparseable.
	// Treated as a fatal startup error; history is never silently discarded.
	ErrCorruptManifest = errors.New("corrupt manifest")

	// ErrSourceUnavailable indicates the document corpus could not be
	// fetched. The run aborts before any mutation.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrSyncInProgress indicates a sync is already running in this process.
	ErrSyncInProgress = errors.New("sync in progress")
)
