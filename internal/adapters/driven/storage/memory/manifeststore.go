// Package memory provides in-memory implementations of the storage ports,
// used in tests and as reference implementations.
package memory

import (
	"context"
	"sync"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is an in-memory implementation of driven.ManifestStore.
type ManifestStore struct {
	mu      sync.RWMutex
	records map[string]domain.TrackingRecord
	saved   bool
}

// NewManifestStore creates a new in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{}
}

// Load returns a manifest built from the last saved records, or an empty
// manifest if nothing has been saved.
func (s *ManifestStore) Load(_ context.Context) (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return domain.NewManifest(), nil
	}
	return domain.FromRecords(s.records), nil
}

// Save snapshots the manifest's records.
func (s *ManifestStore) Save(_ context.Context, m *domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = m.Records()
	s.saved = true
	return nil
}

// Saved reports whether Save has been called.
func (s *ManifestStore) Saved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}
