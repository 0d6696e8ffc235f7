// Package file provides file-based persistence: the JSON manifest with
// atomic-replace semantics and timestamped run summary records.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore persists the manifest as a JSON file. Saves are atomic:
// the manifest is written to a temporary file in the same directory and
// renamed over the target, so a crash mid-write can never leave a
// partially written manifest behind.
type ManifestStore struct {
	path string
}

// NewManifestStore creates a manifest store at the given path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// Path returns the manifest file path.
func (s *ManifestStore) Path() string {
	return s.path
}

// Load reads the manifest. A missing file means a first run and yields an
// empty manifest; an unparseable file yields domain.ErrCorruptManifest.
func (s *ManifestStore) Load(_ context.Context) (*domain.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var records map[string]domain.TrackingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", s.path, domain.ErrCorruptManifest, err)
	}

	return domain.FromRecords(records), nil
}

// Save writes the manifest atomically via write-to-temp-then-rename.
func (s *ManifestStore) Save(_ context.Context, m *domain.Manifest) error {
	data, err := json.MarshalIndent(m.Records(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	// The temp file must live in the target directory for the rename to
	// be atomic.
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
