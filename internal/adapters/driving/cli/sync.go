package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full synchronisation pass",
	Long: `Fetches every published article, uploads new and changed content to
the knowledge index, removes articles that no longer exist, and records
the run summary. Unchanged articles are skipped without any remote calls.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Synchronising articles...")

	summary, err := syncRunner.Run(cmd.Context())
	if summary != nil {
		cmd.Print(renderSummary(summary))
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return nil
}
