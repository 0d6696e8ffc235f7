// kbsync mirrors help centre articles into a remote knowledge index.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/knowledgeops/kbsync/internal/adapters/driven/helpcenter"
	"github.com/knowledgeops/kbsync/internal/adapters/driven/openai"
	"github.com/knowledgeops/kbsync/internal/adapters/driven/storage/file"
	"github.com/knowledgeops/kbsync/internal/adapters/driven/storage/sqlite"
	"github.com/knowledgeops/kbsync/internal/adapters/driving/cli"
	"github.com/knowledgeops/kbsync/internal/config"
	"github.com/knowledgeops/kbsync/internal/core/services"
	"github.com/knowledgeops/kbsync/internal/logger"
	"github.com/knowledgeops/kbsync/internal/settings"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	_, closeLog, err := logger.Setup(cfg.LogsDirectory, os.Getenv("KBSYNC_VERBOSE") != "")
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	tunables, err := settings.Load(filepath.Join(cfg.DataDirectory, "kbsync.toml"))
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	httpClient := &http.Client{Timeout: tunables.HTTPTimeout()}

	// Rewrite article links on the help centre's own host to relative paths.
	publicHost := ""
	if u, err := url.Parse(cfg.HelpCenterBaseURL); err == nil && u.Host != "" {
		publicHost = u.Scheme + "://" + u.Host
	}
	converter := helpcenter.NewConverterWithHost(publicHost).
		StripTags(tunables.StripTags...)
	source := helpcenter.NewSource(
		cfg.HelpCenterBaseURL,
		helpcenter.WithPerPage(cfg.ArticlesPerPage),
		helpcenter.WithRequestsPerSecond(tunables.RequestsPerSecond),
		helpcenter.WithHTTPClient(httpClient),
		helpcenter.WithConverter(converter),
	)

	remote := openai.NewClient(
		cfg.APIBaseURL,
		cfg.APIKey,
		cfg.VectorStoreID,
		openai.WithRequestsPerSecond(tunables.RemoteRequestsPerSecond),
	)

	manifestStore := file.NewManifestStore(cfg.ManifestPath())
	tracker := services.NewTracker(manifestStore)

	historyStore, err := sqlite.NewStore(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("opening run history store: %w", err)
	}
	defer historyStore.Close()

	summaryWriter := file.NewSummaryWriter(cfg.DataDirectory)

	orchestrator := services.NewSyncOrchestrator(
		source,
		remote,
		tracker,
		cfg.OutputDirectory,
		summaryWriter,
		historyStore.RunHistoryStore(),
	)
	resetter := services.NewResetter(remote, tracker)

	cli.Configure(orchestrator, resetter, historyStore.RunHistoryStore())
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		return err
	}
	return nil
}
