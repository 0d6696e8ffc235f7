package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeops/kbsync/internal/adapters/driven/storage/memory"
	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// --- Mock implementations for orchestrator testing ---

// syncMockSource implements driven.DocumentSource.
type syncMockSource struct {
	docs     []domain.Document
	fetchErr error
}

func (m *syncMockSource) FetchAll(_ context.Context) ([]domain.Document, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.docs, nil
}

// syncMockRemote implements driven.RemoteStore with per-document fault
// injection and call accounting.
type syncMockRemote struct {
	nextID int

	failUpload map[string]error // keyed by document ID
	failAttach map[string]error // keyed by document ID
	failDetach map[string]error // keyed by remote file ID
	failDelete map[string]error // keyed by remote file ID

	uploads  []string // document IDs uploaded
	attached []string // remote file IDs attached
	detached []string // remote file IDs detached
	deleted  []string // remote file IDs deleted
}

func newSyncMockRemote() *syncMockRemote {
	return &syncMockRemote{
		failUpload: make(map[string]error),
		failAttach: make(map[string]error),
		failDetach: make(map[string]error),
		failDelete: make(map[string]error),
	}
}

func (m *syncMockRemote) Upload(_ context.Context, doc domain.Document) (string, error) {
	if err := m.failUpload[doc.ID]; err != nil {
		return "", err
	}
	m.nextID++
	id := fmt.Sprintf("file-%d", m.nextID)
	m.uploads = append(m.uploads, doc.ID)
	return id, nil
}

func (m *syncMockRemote) AttachToIndex(_ context.Context, remoteFileID string) error {
	for docID, err := range m.failAttach {
		if err != nil && m.lastUpload() == docID {
			return err
		}
	}
	m.attached = append(m.attached, remoteFileID)
	return nil
}

func (m *syncMockRemote) DetachFromIndex(_ context.Context, remoteFileID string) error {
	if err := m.failDetach[remoteFileID]; err != nil {
		return err
	}
	m.detached = append(m.detached, remoteFileID)
	return nil
}

func (m *syncMockRemote) Delete(_ context.Context, remoteFileID string) error {
	if err := m.failDelete[remoteFileID]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, remoteFileID)
	return nil
}

func (m *syncMockRemote) ListIndexFiles(_ context.Context) ([]string, error) {
	return append([]string(nil), m.attached...), nil
}

func (m *syncMockRemote) lastUpload() string {
	if len(m.uploads) == 0 {
		return ""
	}
	return m.uploads[len(m.uploads)-1]
}

func (m *syncMockRemote) callCount() int {
	return len(m.uploads) + len(m.attached) + len(m.detached) + len(m.deleted)
}

func doc(id, content string) domain.Document {
	return domain.Document{ID: id, Title: "Article " + id, Content: content}
}

func newOrchestrator(source *syncMockSource, remote *syncMockRemote, store *memory.ManifestStore) *SyncOrchestrator {
	return NewSyncOrchestrator(source, remote, NewTracker(store), "")
}

// --- Tests ---

func TestRun_FirstRunUploadsEverything(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}
	remote := newSyncMockRemote()
	store := memory.NewManifestStore()

	summary, err := newOrchestrator(source, remote, store).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, summary.Uploaded)
	assert.Empty(t, summary.Skipped)
	assert.Empty(t, summary.Failed)
	assert.Empty(t, summary.Deleted)

	manifest, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Len())
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}
	store := memory.NewManifestStore()

	_, err := newOrchestrator(source, newSyncMockRemote(), store).Run(context.Background())
	require.NoError(t, err)

	remote := newSyncMockRemote()
	summary, err := newOrchestrator(source, remote, store).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, summary.Uploaded)
	assert.Empty(t, summary.Deleted)
	assert.Equal(t, []string{"A", "B"}, summary.Skipped)

	// The efficiency invariant: zero remote calls for an unchanged corpus.
	assert.Equal(t, 0, remote.callCount())
}

func TestRun_ChangedContentReuploadsAndRetiresOldFile(t *testing.T) {
	store := memory.NewManifestStore()
	ctx := context.Background()

	first := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}
	_, err := newOrchestrator(first, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)

	manifest, err := store.Load(ctx)
	require.NoError(t, err)
	oldRec, ok := manifest.Get("A")
	require.True(t, ok)

	second := &syncMockSource{docs: []domain.Document{doc("A", "hello!"), doc("B", "world")}}
	remote := newSyncMockRemote()
	summary, err := newOrchestrator(second, remote, store).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Uploaded)
	assert.Equal(t, []string{"B"}, summary.Skipped)

	// The stale remote file was detached and deleted.
	assert.Contains(t, remote.detached, oldRec.RemoteFileID)
	assert.Contains(t, remote.deleted, oldRec.RemoteFileID)

	manifest, err = store.Load(ctx)
	require.NoError(t, err)
	newRec, ok := manifest.Get("A")
	require.True(t, ok)
	assert.Equal(t, HashContent("hello!"), newRec.ContentHash)
	assert.NotEqual(t, oldRec.RemoteFileID, newRec.RemoteFileID)
}

func TestRun_DeletionPropagation(t *testing.T) {
	store := memory.NewManifestStore()
	ctx := context.Background()

	first := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}
	_, err := newOrchestrator(first, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)

	second := &syncMockSource{docs: []domain.Document{doc("B", "world")}}
	summary, err := newOrchestrator(second, newSyncMockRemote(), store).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Deleted)
	assert.Equal(t, []string{"B"}, summary.Skipped)

	manifest, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Len())
	_, ok := manifest.Get("A")
	assert.False(t, ok)
}

func TestRun_FailedDeletionKeepsRecord(t *testing.T) {
	store := memory.NewManifestStore()
	ctx := context.Background()

	first := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	_, err := newOrchestrator(first, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)

	manifest, err := store.Load(ctx)
	require.NoError(t, err)
	rec, ok := manifest.Get("A")
	require.True(t, ok)

	second := &syncMockSource{docs: nil}
	remote := newSyncMockRemote()
	remote.failDelete[rec.RemoteFileID] = errors.New("remote unavailable")

	summary, err := newOrchestrator(second, remote, store).Run(ctx)

	require.NoError(t, err)
	assert.Empty(t, summary.Deleted)
	assert.Equal(t, []string{"A"}, summary.Failed)

	// Tracking state survives an unconfirmed deletion; the next run
	// retries it.
	manifest, err = store.Load(ctx)
	require.NoError(t, err)
	_, ok = manifest.Get("A")
	assert.True(t, ok)
}

func TestRun_PerDocumentFailureDoesNotAbortRun(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world"), doc("C", "more")}}
	remote := newSyncMockRemote()
	remote.failUpload["B"] = errors.New("rate limited")
	store := memory.NewManifestStore()

	summary, err := newOrchestrator(source, remote, store).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, summary.Uploaded)
	assert.Equal(t, []string{"B"}, summary.Failed)

	// The manifest still persists the documents that did succeed.
	manifest, loadErr := store.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, 2, manifest.Len())
	_, ok := manifest.Get("B")
	assert.False(t, ok)
}

func TestRun_PartitionInvariant(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{
		doc("A", "a"), doc("B", "b"), doc("C", "c"), doc("D", "d"),
	}}
	remote := newSyncMockRemote()
	remote.failUpload["C"] = errors.New("boom")
	store := memory.NewManifestStore()

	summary, err := newOrchestrator(source, remote, store).Run(context.Background())
	require.NoError(t, err)

	all := make(map[string]int)
	for _, id := range summary.Uploaded {
		all[id]++
	}
	for _, id := range summary.Skipped {
		all[id]++
	}
	for _, id := range summary.Failed {
		all[id]++
	}

	// Every fetched document appears in exactly one bucket.
	assert.Len(t, all, 4)
	for id, count := range all {
		assert.Equal(t, 1, count, "document %s recorded %d times", id, count)
	}
}

func TestRun_FetchFailureAbortsBeforeMutation(t *testing.T) {
	source := &syncMockSource{fetchErr: errors.New("connection refused")}
	store := memory.NewManifestStore()

	_, err := newOrchestrator(source, newSyncMockRemote(), store).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.False(t, store.Saved())
}

func TestRun_CorruptManifestIsFatal(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	store := &failingManifestStore{loadErr: domain.ErrCorruptManifest}
	orch := NewSyncOrchestrator(source, newSyncMockRemote(), NewTracker(store), "")

	_, err := orch.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrCorruptManifest)
}

func TestRun_ManifestPersistFailureIsSurfaced(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	saveErr := errors.New("disk full")
	store := &failingManifestStore{saveErr: saveErr}
	orch := NewSyncOrchestrator(source, newSyncMockRemote(), NewTracker(store), "")

	summary, err := orch.Run(context.Background())

	assert.ErrorIs(t, err, saveErr)
	// The summary is still returned so the operator sees what happened.
	require.NotNil(t, summary)
	assert.Equal(t, []string{"A"}, summary.Uploaded)
}

func TestRun_CancellationSkipsFinalize(t *testing.T) {
	store := memory.NewManifestStore()
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}
	orch := newOrchestrator(source, newSyncMockRemote(), store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.Saved())
}

// cancellingSource cancels a context after its documents are fetched.
type cancellingSource struct {
	docs   []domain.Document
	cancel context.CancelFunc
}

func (s *cancellingSource) FetchAll(_ context.Context) ([]domain.Document, error) {
	s.cancel()
	return s.docs, nil
}

func TestRun_CrashBeforeFinalizeReclassifiesAsNew(t *testing.T) {
	store := memory.NewManifestStore()
	docs := []domain.Document{doc("A", "hello")}

	// First attempt: the context is cancelled right after FETCH, so the
	// upload loop never commits and FINALIZE never runs.
	ctx, cancel := context.WithCancel(context.Background())
	source := &cancellingSource{docs: docs, cancel: cancel}
	remote := newSyncMockRemote()
	_, err := NewSyncOrchestrator(source, remote, NewTracker(store), "").Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, store.Saved())

	// Restart: A classifies NEW again and is uploaded.
	summary, err := newOrchestrator(&syncMockSource{docs: docs}, newSyncMockRemote(), store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Uploaded)
}

func TestRun_AttachFailureRemovesOrphanUpload(t *testing.T) {
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	remote := newSyncMockRemote()
	remote.failAttach["A"] = errors.New("index unavailable")
	store := memory.NewManifestStore()

	summary, err := newOrchestrator(source, remote, store).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Failed)
	// The uploaded-but-unattached file was cleaned up.
	assert.Len(t, remote.deleted, 1)

	manifest, loadErr := store.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, 0, manifest.Len())
}

func TestRun_ScenarioFourRuns(t *testing.T) {
	store := memory.NewManifestStore()
	ctx := context.Background()

	// Run 1: empty manifest, fetch {A: "hello", B: "world"}.
	summary, err := newOrchestrator(&syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, summary.Uploaded)

	manifest, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Len())

	// Run 2: same input.
	summary, err = newOrchestrator(&syncMockSource{docs: []domain.Document{doc("A", "hello"), doc("B", "world")}}, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Uploaded)
	assert.Equal(t, []string{"A", "B"}, summary.Skipped)

	// Run 3: A's content changes.
	summary, err = newOrchestrator(&syncMockSource{docs: []domain.Document{doc("A", "hello!"), doc("B", "world")}}, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Uploaded)
	assert.Equal(t, []string{"B"}, summary.Skipped)

	// Run 4: fetch returns only B.
	summary, err = newOrchestrator(&syncMockSource{docs: []domain.Document{doc("B", "world")}}, newSyncMockRemote(), store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, summary.Deleted)

	manifest, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Len())
	_, ok := manifest.Get("B")
	assert.True(t, ok)
}

func TestRun_MirrorWritesLocalCopies(t *testing.T) {
	dir := t.TempDir()
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	orch := NewSyncOrchestrator(source, newSyncMockRemote(), NewTracker(memory.NewManifestStore()), dir)

	_, err := orch.Run(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "A.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestRun_SecondConcurrentRunRefused(t *testing.T) {
	orch := newOrchestrator(&syncMockSource{}, newSyncMockRemote(), memory.NewManifestStore())
	require.NoError(t, orch.begin())
	defer orch.end()

	_, err := orch.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestStatus_IdleByDefault(t *testing.T) {
	orch := newOrchestrator(&syncMockSource{}, newSyncMockRemote(), memory.NewManifestStore())

	status, err := orch.Status(context.Background())

	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 0, status.DocumentsProcessed)
}

func TestRun_SummaryReachesSinks(t *testing.T) {
	history := memory.NewRunHistoryStore()
	source := &syncMockSource{docs: []domain.Document{doc("A", "hello")}}
	orch := NewSyncOrchestrator(source, newSyncMockRemote(), NewTracker(memory.NewManifestStore()), "", history)

	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	stored, err := history.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, stored.RunID)
	assert.Equal(t, summary.Uploaded, stored.Uploaded)
}
