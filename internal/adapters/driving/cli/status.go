package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sync state and the most recent run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncRunner == nil || runHistory == nil {
		return errors.New("status services not configured")
	}

	status, err := syncRunner.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	if status.Running {
		cmd.Printf("A sync is in progress: %d documents processed, %d errors.\n",
			status.DocumentsProcessed, status.ErrorCount)
	} else {
		cmd.Println("No sync in progress.")
	}

	latest, err := runHistory.Latest(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No runs recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	cmd.Println("\nLast run:")
	cmd.Print(renderSummary(latest))
	return nil
}
