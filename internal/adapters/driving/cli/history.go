package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	RunE:  runHistoryCmd,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errors.New("history service not configured")
	}

	runs, err := runHistory.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for i, run := range runs {
		if i > 0 {
			cmd.Println()
		}
		cmd.Print(renderSummary(&run))
	}
	return nil
}
