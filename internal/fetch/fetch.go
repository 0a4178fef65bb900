// Package fetch retrieves raw product page content. The primary path calls
// the external scraping service that renders a page into parallel markdown
// and HTML views; a headless browser fallback exists for runs without a
// scraping credential.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/listing-insights/internal/listing"
)

// DefaultBaseURL is the scraping service endpoint.
const DefaultBaseURL = "https://api.scrapehub.dev/v1/scrape"

// Default render parameters passed to the scraping service.
const (
	DefaultWaitMilliseconds    = 3000
	DefaultTimeoutMilliseconds = 30000
)

// ProductURL builds the listing page URL for a catalog identifier.
func ProductURL(id string) string {
	return "https://www.amazon.com/dp/" + id
}

// Error represents a failure fetching a listing page.
type Error struct {
	Identifier string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Identifier, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Identifier, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures scrape requests.
type Options struct {
	BaseURL             string
	WaitMilliseconds    int
	TimeoutMilliseconds int
	FullPageScreenshot  bool
}

// DefaultOptions returns the standard scrape parameters.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:             DefaultBaseURL,
		WaitMilliseconds:    DefaultWaitMilliseconds,
		TimeoutMilliseconds: DefaultTimeoutMilliseconds,
		FullPageScreenshot:  true,
	}
}

// Client calls the scraping service.
type Client struct {
	apiKey     string
	opts       *Options
	httpClient *http.Client
}

// NewClient creates a scraping service client.
func NewClient(apiKey string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		opts:   opts,
		httpClient: &http.Client{
			Timeout: time.Duration(opts.TimeoutMilliseconds+5000) * time.Millisecond,
		},
	}
}

type scrapeRequest struct {
	TargetURL           string   `json:"targetUrl"`
	OutputFormats       []string `json:"outputFormats"`
	WaitMilliseconds    int      `json:"waitMilliseconds,omitempty"`
	FullPageScreenshot  bool     `json:"fullPageScreenshot,omitempty"`
	TimeoutMilliseconds int      `json:"timeoutMilliseconds,omitempty"`
}

type scrapeResponse struct {
	Markdown      string  `json:"markdown"`
	HTML          string  `json:"html"`
	ScreenshotURL string  `json:"screenshotUrl,omitempty"`
	CreditsUsed   float64 `json:"creditsUsed,omitempty"`
}

// Listing fetches the product page for an identifier and returns both
// textual views. A response missing either view is a fetch failure.
func (c *Client) Listing(ctx context.Context, id string) (*listing.RawContent, error) {
	reqBody, err := json.Marshal(scrapeRequest{
		TargetURL:           ProductURL(id),
		OutputFormats:       []string{"markdown", "html"},
		WaitMilliseconds:    c.opts.WaitMilliseconds,
		FullPageScreenshot:  c.opts.FullPageScreenshot,
		TimeoutMilliseconds: c.opts.TimeoutMilliseconds,
	})
	if err != nil {
		return nil, &Error{Identifier: id, Message: "failed to encode scrape request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &Error{Identifier: id, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Identifier: id, Message: "scrape request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Identifier: id, Message: "failed to read scrape response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Identifier: id, Message: fmt.Sprintf("scrape service returned HTTP %d", resp.StatusCode)}
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{Identifier: id, Message: "malformed scrape response", Cause: err}
	}

	if parsed.Markdown == "" || parsed.HTML == "" {
		return nil, &Error{Identifier: id, Message: "scrape response missing markdown or html view"}
	}

	return &listing.RawContent{
		Markdown:      parsed.Markdown,
		HTML:          parsed.HTML,
		ScreenshotURL: parsed.ScreenshotURL,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// Bytes retrieves a raw resource, typically image bytes for analysis.
func Bytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for %s: %w", url, err)
	}
	return data, nil
}
