// Package scrape drives the per-identifier fetch and parse loop with
// explicit pacing between requests.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/listing-insights/internal/listing"
)

// InterRequestDelay is the pause inserted between consecutive identifiers.
// This is backpressure against the upstream service's rate limits, not an
// optimization; it applies between items only, never before the first or
// after the last.
const InterRequestDelay = 2 * time.Second

// Fetcher retrieves the raw page content for one identifier.
type Fetcher interface {
	Listing(ctx context.Context, id string) (*listing.RawContent, error)
}

// Failure records one identifier the batch could not turn into a listing.
type Failure struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// Result accumulates the outcome of a batch run. A failed identifier is
// simply absent from Listings.
type Result struct {
	Listings map[string]*listing.ParsedListing `json:"listings"`
	Failures []Failure                         `json:"failures"`
}

// SuccessCount returns the number of identifiers parsed successfully.
func (r *Result) SuccessCount() int {
	return len(r.Listings)
}

// Batch fetches and parses a sequence of identifiers one at a time.
type Batch struct {
	Fetcher Fetcher
	Delay   time.Duration
	// Sleep is injectable so tests can record pacing instead of waiting.
	Sleep   func(time.Duration)
	Verbose bool
}

// New creates a Batch with standard pacing.
func New(fetcher Fetcher) *Batch {
	return &Batch{
		Fetcher: fetcher,
		Delay:   InterRequestDelay,
		Sleep:   time.Sleep,
	}
}

// Run processes every identifier sequentially: fetch, parse, accumulate.
// One identifier's failure never aborts the batch.
func (b *Batch) Run(ctx context.Context, ids []string) *Result {
	result := &Result{
		Listings: make(map[string]*listing.ParsedListing, len(ids)),
		Failures: []Failure{},
	}

	sleep := b.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for i, id := range ids {
		if i > 0 && b.Delay > 0 {
			sleep(b.Delay)
		}

		if b.Verbose {
			fmt.Printf("  Scraping %s (%d/%d)...\n", id, i+1, len(ids))
		}

		content, err := b.Fetcher.Listing(ctx, id)
		if err != nil {
			result.Failures = append(result.Failures, Failure{
				Identifier: id,
				Message:    err.Error(),
			})
			continue
		}

		parsed, err := listing.Parse(content.Markdown, content.HTML, id)
		if err != nil {
			result.Failures = append(result.Failures, Failure{
				Identifier: id,
				Message:    err.Error(),
			})
			continue
		}

		result.Listings[id] = parsed
	}

	return result
}
