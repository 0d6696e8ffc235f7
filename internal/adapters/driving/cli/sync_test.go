package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driving"
)

// mockSyncRunner implements driving.SyncRunner for testing.
type mockSyncRunner struct {
	summary *domain.RunSummary
	runErr  error
	status  driving.RunStatus
}

func (m *mockSyncRunner) Run(_ context.Context) (*domain.RunSummary, error) {
	return m.summary, m.runErr
}

func (m *mockSyncRunner) Status(_ context.Context) (*driving.RunStatus, error) {
	return &m.status, nil
}

func testSummary() *domain.RunSummary {
	started := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	return &domain.RunSummary{
		RunID:     "run-123",
		StartedAt: started,
		EndedAt:   started.Add(3 * time.Second),
		Uploaded:  []string{"11", "12"},
		Skipped:   []string{"13"},
		Deleted:   []string{"14"},
	}
}

func setupSyncTest(runner driving.SyncRunner) func() {
	old := syncRunner
	syncRunner = runner
	return func() { syncRunner = old }
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_PrintsSummary(t *testing.T) {
	cleanup := setupSyncTest(&mockSyncRunner{summary: testSummary()})
	defer cleanup()

	out, err := executeCommand("sync")

	assert.NoError(t, err)
	assert.Contains(t, out, "Synchronising articles...")
	assert.Contains(t, out, "run-123")
	assert.Contains(t, out, "2 uploaded")
	assert.Contains(t, out, "1 unchanged")
	assert.Contains(t, out, "1 deleted")
	assert.Contains(t, out, "0 failed")
}

func TestSyncCmd_ReportsFailures(t *testing.T) {
	summary := testSummary()
	summary.Failed = []string{"15"}
	cleanup := setupSyncTest(&mockSyncRunner{summary: summary})
	defer cleanup()

	out, err := executeCommand("sync")

	assert.NoError(t, err)
	assert.Contains(t, out, "1 failed: 15")
}

func TestSyncCmd_FatalErrorStillShowsSummary(t *testing.T) {
	cleanup := setupSyncTest(&mockSyncRunner{
		summary: testSummary(),
		runErr:  errors.New("saving manifest: disk full"),
	})
	defer cleanup()

	out, err := executeCommand("sync")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed")
	assert.Contains(t, out, "run-123")
}

func TestSyncCmd_NotConfigured(t *testing.T) {
	cleanup := setupSyncTest(nil)
	defer cleanup()

	_, err := executeCommand("sync")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
