// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Knowledge index API.
	APIKey        string `envconfig:"KBSYNC_API_KEY"`
	APIBaseURL    string `envconfig:"KBSYNC_API_BASE_URL" default:"https://api.openai.com/v1"`
	VectorStoreID string `envconfig:"VECTOR_STORE_ID"`

	// Help centre source.
	HelpCenterBaseURL string `envconfig:"HELPCENTER_BASE_URL"`
	ArticlesPerPage   int    `envconfig:"ARTICLES_PER_PAGE" default:"100"`

	// Local layout.
	OutputDirectory string `envconfig:"OUTPUT_DIRECTORY" default:"output"`
	DataDirectory   string `envconfig:"DATA_DIRECTORY" default:"data"`
	LogsDirectory   string `envconfig:"LOGS_DIRECTORY" default:"logs"`
}

// Load reads .env if present, then the process environment, and
// validates the result.
func Load() (*Config, error) {
	// Env vars may already be set in the shell, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: KBSYNC_API_KEY", ErrMissingRequired)
	}
	if c.VectorStoreID == "" {
		return fmt.Errorf("%w: VECTOR_STORE_ID", ErrMissingRequired)
	}
	if c.HelpCenterBaseURL == "" {
		return fmt.Errorf("%w: HELPCENTER_BASE_URL", ErrMissingRequired)
	}
	return nil
}

// ManifestPath is the tracking manifest location under the data directory.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DataDirectory, "manifest.json")
}

// EnsureDirectories creates the output, data and logs directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.OutputDirectory, c.DataDirectory, c.LogsDirectory} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
