package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Tracker owns the manifest for the duration of a run and classifies
// documents against it. Classification is purely a function of content
// hash; source timestamps are not trusted signals of change.
type Tracker struct {
	store    driven.ManifestStore
	manifest *domain.Manifest
}

// NewTracker creates a tracker backed by the given manifest store.
// Load must be called before any other method.
func NewTracker(store driven.ManifestStore) *Tracker {
	return &Tracker{store: store}
}

// HashContent returns the SHA-256 digest of content, hex encoded.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Load reads the persisted manifest into memory. A corrupt manifest is a
// fatal startup error, never silently replaced.
func (t *Tracker) Load(ctx context.Context) error {
	m, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	t.manifest = m
	return nil
}

// Classify compares the document against its tracking record and returns
// the decision along with the computed content hash.
func (t *Tracker) Classify(doc domain.Document) (domain.Decision, string) {
	hash := HashContent(doc.Content)

	rec, ok := t.manifest.Get(doc.ID)
	if !ok {
		return domain.DecisionNew, hash
	}
	if rec.ContentHash != hash {
		return domain.DecisionUpdated, hash
	}
	return domain.DecisionUnchanged, hash
}

// Record returns the tracking record for a document ID, if any.
func (t *Tracker) Record(documentID string) (domain.TrackingRecord, bool) {
	return t.manifest.Get(documentID)
}

// DiffDeletions returns manifest IDs absent from the current document
// set — candidates for remote deletion.
func (t *Tracker) DiffDeletions(currentIDs map[string]struct{}) []string {
	var missing []string
	for _, id := range t.manifest.IDs() {
		if _, ok := currentIDs[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Commit creates or overwrites the tracking record for a document. It
// must be called only after the corresponding remote operation has been
// confirmed successful.
func (t *Tracker) Commit(documentID, contentHash, remoteFileID string, indexed bool) {
	t.manifest.Put(domain.TrackingRecord{
		DocumentID:   documentID,
		ContentHash:  contentHash,
		RemoteFileID: remoteFileID,
		Indexed:      indexed,
		LastSyncedAt: time.Now().UTC(),
	})
}

// RemoveRecord deletes the tracking record for a document. Called only
// after the remote deletion is confirmed.
func (t *Tracker) RemoveRecord(documentID string) {
	t.manifest.Remove(documentID)
}

// Len returns the number of tracked documents.
func (t *Tracker) Len() int {
	return t.manifest.Len()
}

// Persist durably writes the manifest, once, at the end of a run.
func (t *Tracker) Persist(ctx context.Context) error {
	if err := t.store.Save(ctx, t.manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// Clear discards all tracking state and persists the empty manifest.
func (t *Tracker) Clear(ctx context.Context) error {
	t.manifest = domain.NewManifest()
	return t.Persist(ctx)
}
