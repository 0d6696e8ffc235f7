package driven

import (
	"context"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// ManifestStore persists the manifest between runs.
type ManifestStore interface {
	// Load reads the persisted manifest. Returns an empty manifest if
	// none exists (first run) and domain.ErrCorruptManifest if the
	// persisted form is unparseable.
	Load(ctx context.Context) (*domain.Manifest, error)

	// Save durably writes the manifest. The write must be atomic with
	// respect to process crash: a partially written manifest must never
	// be observable as a complete one.
	Save(ctx context.Context, m *domain.Manifest) error
}
