package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

func TestManifestStore_LoadEmptyBeforeSave(t *testing.T) {
	store := NewManifestStore()

	m, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, store.Saved())
}

func TestManifestStore_SaveThenLoad(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	m := domain.NewManifest()
	m.Put(domain.TrackingRecord{DocumentID: "a1", ContentHash: "h1", RemoteFileID: "f1", Indexed: true})
	require.NoError(t, store.Save(ctx, m))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	rec, ok := loaded.Get("a1")
	assert.True(t, ok)
	assert.Equal(t, "h1", rec.ContentHash)
	assert.Equal(t, "f1", rec.RemoteFileID)
	assert.True(t, store.Saved())
}

func TestManifestStore_SaveSnapshotsRecords(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	m := domain.NewManifest()
	m.Put(domain.TrackingRecord{DocumentID: "a1", ContentHash: "h1"})
	require.NoError(t, store.Save(ctx, m))

	// Mutating the manifest after Save must not leak into the store.
	m.Put(domain.TrackingRecord{DocumentID: "a2", ContentHash: "h2"})

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestRunHistoryStore_LatestAndHistory(t *testing.T) {
	store := NewRunHistoryStore()
	ctx := context.Background()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveSummary(ctx, &domain.RunSummary{RunID: "run-1"}))
	require.NoError(t, store.SaveSummary(ctx, &domain.RunSummary{RunID: "run-2"}))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)

	history, err := store.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "run-2", history[0].RunID)
	assert.Equal(t, "run-1", history[1].RunID)

	limited, err := store.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].RunID)
}
