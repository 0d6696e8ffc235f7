package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure SummaryWriter implements the interface.
var _ driven.SummarySink = (*SummaryWriter)(nil)

// summaryTimestampLayout names summary files by run start time.
const summaryTimestampLayout = "20060102_150405"

// latestSummaryFile always reflects the most recent run.
const latestSummaryFile = "latest.json"

// SummaryWriter persists run summaries as timestamped JSON records plus a
// "latest" pointer record, for operational inspection.
type SummaryWriter struct {
	dir string
}

// NewSummaryWriter creates a summary writer in the given directory.
func NewSummaryWriter(dir string) *SummaryWriter {
	return &SummaryWriter{dir: dir}
}

// summaryRecord is the persisted form of a run summary.
type summaryRecord struct {
	RunID           string   `json:"run_id"`
	StartedAt       string   `json:"started_at"`
	EndedAt         string   `json:"ended_at"`
	DurationSeconds float64  `json:"duration_seconds"`
	Uploaded        []string `json:"uploaded"`
	SkippedCount    int      `json:"skipped_count"`
	Failed          []string `json:"failed"`
	Deleted         []string `json:"deleted"`
}

// SaveSummary writes run_summary_<timestamp>.json and updates the latest
// pointer.
func (w *SummaryWriter) SaveSummary(_ context.Context, summary *domain.RunSummary) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating summary directory: %w", err)
	}

	record := summaryRecord{
		RunID:           summary.RunID,
		StartedAt:       summary.StartedAt.Format(time.RFC3339),
		EndedAt:         summary.EndedAt.Format(time.RFC3339),
		DurationSeconds: summary.Duration().Seconds(),
		Uploaded:        summary.Uploaded,
		SkippedCount:    len(summary.Skipped),
		Failed:          summary.Failed,
		Deleted:         summary.Deleted,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}

	name := fmt.Sprintf("run_summary_%s.json", summary.StartedAt.Format(summaryTimestampLayout))
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, latestSummaryFile), data, 0o644); err != nil {
		return fmt.Errorf("writing latest summary: %w", err)
	}
	return nil
}
