// Package settings reads optional tuning parameters from kbsync.toml.
// Everything here has a sensible default; the file only exists when an
// operator needs to override one.
package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds rate limiting and HTTP tunables.
type Settings struct {
	// RequestsPerSecond throttles help centre listing calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// RemoteRequestsPerSecond throttles knowledge index API calls.
	RemoteRequestsPerSecond float64 `toml:"remote_requests_per_second"`

	// HTTPTimeoutSeconds bounds individual HTTP calls.
	HTTPTimeoutSeconds int `toml:"http_timeout_seconds"`

	// StripTags lists extra HTML tags to drop during conversion.
	StripTags []string `toml:"strip_tags"`
}

// Defaults returns the baked-in tunables.
func Defaults() Settings {
	return Settings{
		RequestsPerSecond:       2.0,
		RemoteRequestsPerSecond: 5.0,
		HTTPTimeoutSeconds:      30,
	}
}

// Load reads path and merges it over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// HTTPTimeout returns the HTTP timeout as a duration.
func (s Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

func (s Settings) validate() error {
	if s.RequestsPerSecond <= 0 {
		return errors.New("requests_per_second must be positive")
	}
	if s.RemoteRequestsPerSecond <= 0 {
		return errors.New("remote_requests_per_second must be positive")
	}
	if s.HTTPTimeoutSeconds <= 0 {
		return errors.New("http_timeout_seconds must be positive")
	}
	return nil
}
