// Package openlibrary provides a rate-limited HTTP client for the Open
// Library books API, used to enrich imported catalog entries by ISBN.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Open Library API base URL.
	BaseURL = "https://openlibrary.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps well under Open Library's courtesy limits.
	RateLimit = 2.0

	// CoverURLTemplate builds a medium cover image URL from a cover ID.
	CoverURLTemplate = "https://covers.openlibrary.org/b/id/%d-M.jpg"
)

// ErrNotFound is returned when no edition exists for an ISBN.
var ErrNotFound = errors.New("isbn not found")

// Metadata is the subset of edition metadata used for enrichment.
type Metadata struct {
	Title       string   `json:"title"`
	PublishYear int      `json:"publish_year,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// Client is a rate-limited HTTP client for the Open Library API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new Open Library API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// edition mirrors the fields of /isbn/<isbn>.json we consume.
type edition struct {
	Title       string   `json:"title"`
	PublishDate string   `json:"publish_date"`
	Covers      []int    `json:"covers"`
	Subjects    []string `json:"subjects"`
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// LookupISBN fetches edition metadata for an ISBN. Returns ErrNotFound for
// unknown ISBNs.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var ed edition
	if err := json.Unmarshal(body, &ed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	meta := &Metadata{
		Title:    ed.Title,
		Subjects: ed.Subjects,
	}
	if m := yearPattern.FindString(ed.PublishDate); m != "" {
		meta.PublishYear, _ = strconv.Atoi(m)
	}
	if len(ed.Covers) > 0 && ed.Covers[0] > 0 {
		meta.CoverURL = fmt.Sprintf(CoverURLTemplate, ed.Covers[0])
	}
	return meta, nil
}
