// Package logger configures structured logging for kbsync. Every run
// logs to stderr and, when a logs directory is given, to a timestamped
// per-run log file as well.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout names per-run log files, e.g. sync_job_20240131_154500.log.
const timestampLayout = "20060102_150405"

// Setup builds the process logger and installs it as the slog default.
// The returned closer flushes the per-run log file; it is a no-op when
// logsDir is empty.
func Setup(logsDir string, verbose bool) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	writer := io.Writer(os.Stderr)
	closer := func() error { return nil }

	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating logs directory: %w", err)
		}
		name := fmt.Sprintf("sync_job_%s.log", time.Now().Format(timestampLayout))
		file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		writer = io.MultiWriter(os.Stderr, file)
		closer = file.Close
	}

	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer, nil
}
