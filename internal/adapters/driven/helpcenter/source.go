// Package helpcenter implements the DocumentSource port against a
// Zendesk-style help centre articles API.
package helpcenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/knowledgeops/kbsync/internal/core/domain"
	"github.com/knowledgeops/kbsync/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

const (
	// defaultPerPage is the article page size requested from the API.
	defaultPerPage = 100

	// defaultRequestsPerSecond throttles listing calls.
	defaultRequestsPerSecond = 2.0

	// defaultTimeout bounds individual API calls.
	defaultTimeout = 30 * time.Second
)

// Source fetches help centre articles page by page and converts their
// HTML bodies to markdown.
type Source struct {
	baseURL    string
	perPage    int
	httpClient *http.Client
	limiter    *rate.Limiter
	converter  *Converter
}

// Option configures a Source.
type Option func(*Source)

// WithPerPage overrides the page size.
func WithPerPage(perPage int) Option {
	return func(s *Source) {
		if perPage > 0 {
			s.perPage = perPage
		}
	}
}

// WithRequestsPerSecond overrides the proactive throttle rate.
func WithRequestsPerSecond(rps float64) Option {
	return func(s *Source) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Source) {
		s.httpClient = httpClient
	}
}

// WithConverter replaces the HTML converter.
func WithConverter(converter *Converter) Option {
	return func(s *Source) {
		s.converter = converter
	}
}

// NewSource creates a help centre source. baseURL is the articles
// endpoint, e.g. https://support.example.com/api/v2/help_center/en-us/articles.
func NewSource(baseURL string, opts ...Option) *Source {
	s := &Source{
		baseURL:    baseURL,
		perPage:    defaultPerPage,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
		converter:  NewConverter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// article is one entry in an articles listing.
type article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	UpdatedAt time.Time `json:"updated_at"`
	Draft     bool      `json:"draft"`
}

// articlePage is one page of an articles listing.
type articlePage struct {
	Articles []article `json:"articles"`
	NextPage string    `json:"next_page"`
}

// FetchAll returns every published article in the corpus, converted to
// markdown. Any page failure aborts the fetch; a partial corpus would be
// indistinguishable from mass deletion downstream.
func (s *Source) FetchAll(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	for page := 1; ; page++ {
		listing, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, a := range listing.Articles {
			if a.Draft {
				continue
			}
			docs = append(docs, domain.Document{
				ID:        strconv.FormatInt(a.ID, 10),
				Title:     a.Title,
				Content:   s.converter.ToMarkdown(a.Title, a.Body),
				URL:       a.HTMLURL,
				UpdatedAt: a.UpdatedAt,
			})
		}

		if listing.NextPage == "" || len(listing.Articles) == 0 {
			return docs, nil
		}
	}
}

func (s *Source) fetchPage(ctx context.Context, page int) (*articlePage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s?page=%d&per_page=%d", s.baseURL, page, s.perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling articles API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("articles API returned %s", resp.Status)
	}

	var listing articlePage
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding articles page: %w", err)
	}
	return &listing, nil
}
