// Package openai implements the RemoteStore port against an OpenAI-style
// files and vector stores API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RemoteStore = (*Client)(nil)

const (
	// betaHeader opts in to the vector stores API.
	betaHeader = "OpenAI-Beta"

	// betaValue is the current assistants API revision.
	betaValue = "assistants=v2"

	// defaultRequestsPerSecond throttles API calls proactively to stay
	// clear of account rate limits.
	defaultRequestsPerSecond = 5.0

	// defaultTimeout bounds individual API calls.
	defaultTimeout = 60 * time.Second
)

// Client talks to the files and vector stores endpoints. All calls are
// throttled through a shared token bucket.
type Client struct {
	baseURL       string
	vectorStoreID string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRequestsPerSecond overrides the proactive throttle rate.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a remote store client. The API key is carried as a
// bearer token via an oauth2 static token source.
func NewClient(baseURL, apiKey, vectorStoreID string, opts ...Option) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   "Bearer",
	})

	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = defaultTimeout

	c := &Client{
		baseURL:       baseURL,
		vectorStoreID: vectorStoreID,
		httpClient:    httpClient,
		limiter:       rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the error envelope the API returns on non-2xx responses.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// do throttles, executes and decodes one API call. A nil out discards the
// response body. 404 responses map to domain.ErrNotFound.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var envelope apiError
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s %s: %s (%s)", req.Method, req.URL.Path, envelope.Error.Message, resp.Status)
		}
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL.Path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
