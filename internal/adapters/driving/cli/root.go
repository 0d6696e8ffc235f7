// Package cli implements the kbsync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
	"github.com/knowledgeops/kbsync/internal/core/ports/driving"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute runs.
var (
	syncRunner driving.SyncRunner
	resetter   driving.Resetter
	runHistory driven.RunHistoryStore
)

var rootCmd = &cobra.Command{
	Use:   "kbsync",
	Short: "Synchronise help centre articles into a knowledge index",
	Long: `kbsync mirrors a help centre's published articles into a remote
knowledge index. Content hashes track what changed between runs, so
unchanged articles cost nothing and removed articles are cleaned up.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Configure injects the services the commands depend on.
func Configure(runner driving.SyncRunner, r driving.Resetter, history driven.RunHistoryStore) {
	syncRunner = runner
	resetter = r
	runHistory = history
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
