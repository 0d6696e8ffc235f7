package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// runHistoryStore implements driven.RunHistoryStore.
type runHistoryStore struct {
	store *Store
}

var _ driven.RunHistoryStore = (*runHistoryStore)(nil)

// SaveSummary records one run.
func (s *runHistoryStore) SaveSummary(ctx context.Context, summary *domain.RunSummary) error {
	if summary == nil {
		return domain.ErrInvalidInput
	}

	uploaded, err := marshalIDs(summary.Uploaded)
	if err != nil {
		return err
	}
	skipped, err := marshalIDs(summary.Skipped)
	if err != nil {
		return err
	}
	failed, err := marshalIDs(summary.Failed)
	if err != nil {
		return err
	}
	deleted, err := marshalIDs(summary.Deleted)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO run_summaries (run_id, started_at, ended_at, duration_seconds, uploaded, skipped, failed, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			duration_seconds = excluded.duration_seconds,
			uploaded = excluded.uploaded,
			skipped = excluded.skipped,
			failed = excluded.failed,
			deleted = excluded.deleted
	`, summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.EndedAt.UTC().Format(time.RFC3339Nano),
		summary.Duration().Seconds(),
		uploaded, skipped, failed, deleted)

	if err != nil {
		return fmt.Errorf("saving run summary: %w", err)
	}
	return nil
}

// Latest returns the most recent run summary.
func (s *runHistoryStore) Latest(ctx context.Context) (*domain.RunSummary, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, started_at, ended_at, uploaded, skipped, failed, deleted
		FROM run_summaries
		ORDER BY started_at DESC
		LIMIT 1
	`)

	summary, err := scanSummary(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// History returns up to limit summaries, most recent first.
func (s *runHistoryStore) History(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, started_at, ended_at, uploaded, skipped, failed, deleted
		FROM run_summaries
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		summary, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run summaries: %w", err)
	}

	return summaries, nil
}

// scanSummary reads one run_summaries row.
func scanSummary(scan func(dest ...any) error) (*domain.RunSummary, error) {
	var (
		summary            domain.RunSummary
		startedAt, endedAt string
		uploaded, skipped  string
		failed, deleted    string
	)

	if err := scan(&summary.RunID, &startedAt, &endedAt, &uploaded, &skipped, &failed, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run summary: %w", err)
	}

	var err error
	if summary.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if summary.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return nil, fmt.Errorf("parsing ended_at: %w", err)
	}

	if summary.Uploaded, err = unmarshalIDs(uploaded); err != nil {
		return nil, err
	}
	if summary.Skipped, err = unmarshalIDs(skipped); err != nil {
		return nil, err
	}
	if summary.Failed, err = unmarshalIDs(failed); err != nil {
		return nil, err
	}
	if summary.Deleted, err = unmarshalIDs(deleted); err != nil {
		return nil, err
	}

	return &summary, nil
}

func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshalling id list: %w", err)
	}
	return string(data), nil
}

func unmarshalIDs(data string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshalling id list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
