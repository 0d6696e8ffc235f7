package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every indexed file and clear local tracking state",
	Long: `Detaches and deletes every file in the knowledge index and clears the
tracking manifest. The next sync re-uploads the whole corpus. This is
destructive and requires --yes.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if resetter == nil {
		return errors.New("reset service not configured")
	}

	if !resetConfirmed {
		return errors.New("reset is destructive; re-run with --yes to confirm")
	}

	cmd.Println("Resetting knowledge index...")

	result, err := resetter.Reset(cmd.Context())
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	cmd.Printf("Deleted %d files.\n", result.FilesDeleted)
	if result.Failed > 0 {
		cmd.Printf("%s\n", errorStyle.Render(fmt.Sprintf("%d files could not be deleted.", result.Failed)))
	}
	return nil
}
