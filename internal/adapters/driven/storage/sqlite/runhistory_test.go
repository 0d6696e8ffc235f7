package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func summaryAt(runID string, startedAt time.Time) *domain.RunSummary {
	return &domain.RunSummary{
		RunID:     runID,
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(30 * time.Second),
		Uploaded:  []string{"a1"},
		Skipped:   []string{"a2", "a3"},
		Failed:    nil,
		Deleted:   []string{"a4"},
	}
}

func TestRunHistoryStore_SaveAndLatest(t *testing.T) {
	store := newTestStore(t)
	history := store.RunHistoryStore()
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, history.SaveSummary(ctx, summaryAt("run-1", started)))

	latest, err := history.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-1", latest.RunID)
	assert.True(t, latest.StartedAt.Equal(started))
	assert.Equal(t, []string{"a1"}, latest.Uploaded)
	assert.Equal(t, []string{"a2", "a3"}, latest.Skipped)
	assert.Nil(t, latest.Failed)
	assert.Equal(t, []string{"a4"}, latest.Deleted)
	assert.Equal(t, 30*time.Second, latest.Duration())
}

func TestRunHistoryStore_LatestEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RunHistoryStore().Latest(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunHistoryStore_HistoryOrdering(t *testing.T) {
	store := newTestStore(t)
	history := store.RunHistoryStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, history.SaveSummary(ctx, summaryAt("run-1", base)))
	require.NoError(t, history.SaveSummary(ctx, summaryAt("run-2", base.Add(time.Hour))))
	require.NoError(t, history.SaveSummary(ctx, summaryAt("run-3", base.Add(2*time.Hour))))

	summaries, err := history.History(ctx, 2)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "run-3", summaries[0].RunID)
	assert.Equal(t, "run-2", summaries[1].RunID)
}

func TestRunHistoryStore_HistoryInvalidLimit(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RunHistoryStore().History(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunHistoryStore_SaveNilSummary(t *testing.T) {
	store := newTestStore(t)

	err := store.RunHistoryStore().SaveSummary(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunHistoryStore_SaveIsIdempotentPerRunID(t *testing.T) {
	store := newTestStore(t)
	history := store.RunHistoryStore()
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	summary := summaryAt("run-1", started)
	require.NoError(t, history.SaveSummary(ctx, summary))

	summary.Uploaded = []string{"a1", "a9"}
	require.NoError(t, history.SaveSummary(ctx, summary))

	summaries, err := history.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, []string{"a1", "a9"}, summaries[0].Uploaded)
}

func TestNewStore_ReopensExistingDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.RunHistoryStore().SaveSummary(ctx, summaryAt("run-1", time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.RunHistoryStore().Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", latest.RunID)
}
