// Package report assembles the competitive analysis prompt, invokes the
// text-generation service, and parses its semi-structured response into
// typed sections.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/prompts"
	"github.com/jonathan/listing-insights/internal/vision"
)

// Prompt-size bounds: per-listing lists are truncated to small prefixes so
// the serialized dataset stays well inside the model context.
const (
	maxPromptBullets     = 3
	maxPromptLabels      = 5
	maxPromptText        = 3
	maxPromptImagesShown = 5
)

// Report is the parsed competitive analysis. Sections missing from the
// model response stay empty; that is a recoverable condition, not an error.
type Report struct {
	Summary              string    `json:"summary"`
	CompetitiveInsights  []string  `json:"competitive_insights"`
	Recommendations      []string  `json:"recommendations"`
	ImageQualityAnalysis string    `json:"image_quality_analysis"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// Generator is the single text-generation call the synthesizer needs.
// llm.Client satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// APICallError represents a text-generation service failure. This is a hard
// stage failure: the run proceeds without a report.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("report generation failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// Synthesize builds the prompt from the listing and image-analysis data,
// makes one generation call, and parses the response into sections.
func Synthesize(ctx context.Context, gen Generator, listings map[string]*listing.ParsedListing, analyses map[string][]vision.ImageAnalysis) (*Report, error) {
	prompt := BuildPrompt(listings, analyses)

	response, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, &APICallError{Message: "generation call failed", Cause: err}
	}

	result := ParseResponse(response)
	result.GeneratedAt = time.Now().UTC()
	return result, nil
}

// BuildPrompt serializes the run data compactly into the report template.
// Listings are emitted in identifier order for deterministic output.
func BuildPrompt(listings map[string]*listing.ParsedListing, analyses map[string][]vision.ImageAnalysis) string {
	template := prompts.MustGet("report.json", "competitive-report")

	ids := make([]string, 0, len(listings))
	for id := range listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		writeListingData(&b, listings[id], analyses[id])
	}

	return prompts.Format(template, map[string]string{
		"Data": strings.TrimSpace(b.String()),
	})
}

func writeListingData(b *strings.Builder, l *listing.ParsedListing, analyses []vision.ImageAnalysis) {
	fmt.Fprintf(b, "### %s — %s\n", l.Identifier, l.Title)
	fmt.Fprintf(b, "Price: $%.2f | Rating: %.1f/5 | Reviews: %d | Images: %d\n",
		l.Price, l.Rating, l.ReviewCount, len(l.Images))

	for i, bullet := range l.Bullets {
		if i >= maxPromptBullets {
			fmt.Fprintf(b, "- (%d more bullets)\n", len(l.Bullets)-maxPromptBullets)
			break
		}
		fmt.Fprintf(b, "- %s\n", bullet)
	}

	for i, a := range analyses {
		if i >= maxPromptImagesShown {
			break
		}
		fmt.Fprintf(b, "Image %d: labels=[%s] text=[%s] faces=%d flags=[%s]\n",
			i+1,
			joinLabels(a.Labels, maxPromptLabels),
			joinText(a.DetectedText, maxPromptText),
			a.FaceCount,
			joinFlags(a.ModerationFlags))
	}

	b.WriteString("\n")
}

func joinLabels(labels []vision.Label, max int) string {
	names := make([]string, 0, max)
	for i, l := range labels {
		if i >= max {
			break
		}
		names = append(names, l.Name)
	}
	return strings.Join(names, ", ")
}

func joinText(detections []vision.TextDetection, max int) string {
	texts := make([]string, 0, max)
	for i, d := range detections {
		if i >= max {
			break
		}
		texts = append(texts, d.Text)
	}
	return strings.Join(texts, " / ")
}

func joinFlags(flags []vision.ModerationFlag) string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}
