package vision

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/listing-insights/internal/fetch"
	"github.com/jonathan/listing-insights/internal/listing"
)

// MaxImagesPerListing bounds analysis cost: only the first images of each
// listing, by position order, are analyzed.
const MaxImagesPerListing = 5

// InterImageDelay throttles vision service calls. Applied between analyzed
// images only, never before the first or after the last.
const InterImageDelay = 300 * time.Millisecond

// Failure records one image that could not be analyzed. Other images of the
// same listing are unaffected.
type Failure struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// Result maps each identifier to the ordered per-image analyses collected
// for it. Partial records are valid: a failed image leaves the rest of its
// listing's results in place.
type Result struct {
	Analyses map[string][]ImageAnalysis `json:"analyses"`
	Failures []Failure                  `json:"failures"`
}

// Collector runs the four analysis operations per image across all
// listings, sequentially and paced.
type Collector struct {
	Analyzer Analyzer
	// FetchImage retrieves raw image bytes; defaults to fetch.Bytes.
	FetchImage func(ctx context.Context, url string) ([]byte, error)
	Delay      time.Duration
	// Sleep is injectable so tests can record pacing instead of waiting.
	Sleep   func(time.Duration)
	Verbose bool
}

// NewCollector creates a Collector with standard pacing.
func NewCollector(analyzer Analyzer) *Collector {
	return &Collector{
		Analyzer:   analyzer,
		FetchImage: fetch.Bytes,
		Delay:      InterImageDelay,
		Sleep:      time.Sleep,
	}
}

// Collect analyzes the bounded image prefix of every listing. Listings are
// visited in identifier order so pacing and output are deterministic.
func (c *Collector) Collect(ctx context.Context, listings map[string]*listing.ParsedListing) *Result {
	result := &Result{
		Analyses: make(map[string][]ImageAnalysis, len(listings)),
		Failures: []Failure{},
	}

	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	ids := make([]string, 0, len(listings))
	for id := range listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	analyzed := 0
	for _, id := range ids {
		images := listings[id].Images
		if len(images) > MaxImagesPerListing {
			images = images[:MaxImagesPerListing]
		}

		for _, img := range images {
			if analyzed > 0 && c.Delay > 0 {
				sleep(c.Delay)
			}
			analyzed++

			if c.Verbose {
				fmt.Printf("  Analyzing image %d of %s...\n", img.Position, id)
			}

			analysis, err := c.analyzeOne(ctx, img.URL)
			if err != nil {
				result.Failures = append(result.Failures, Failure{
					Identifier: id,
					Message:    fmt.Sprintf("image %s: %v", img.URL, err),
				})
				continue
			}
			result.Analyses[id] = append(result.Analyses[id], *analysis)
		}
	}

	return result
}

// analyzeOne runs the full analysis unit for a single image. The byte fetch
// and the four service calls are one unit: any failure skips the image.
func (c *Collector) analyzeOne(ctx context.Context, url string) (*ImageAnalysis, error) {
	fetchImage := c.FetchImage
	if fetchImage == nil {
		fetchImage = fetch.Bytes
	}

	data, err := fetchImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	labels, err := c.Analyzer.Labels(ctx, data)
	if err != nil {
		return nil, err
	}
	text, err := c.Analyzer.Text(ctx, data)
	if err != nil {
		return nil, err
	}
	faces, err := c.Analyzer.FaceCount(ctx, data)
	if err != nil {
		return nil, err
	}
	moderation, err := c.Analyzer.Moderation(ctx, data)
	if err != nil {
		return nil, err
	}

	if labels == nil {
		labels = []Label{}
	}
	if text == nil {
		text = []TextDetection{}
	}
	if moderation == nil {
		moderation = []ModerationFlag{}
	}

	return &ImageAnalysis{
		URL:             url,
		Labels:          labels,
		DetectedText:    text,
		FaceCount:       faces,
		ModerationFlags: moderation,
	}, nil
}
