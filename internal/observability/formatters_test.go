package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/pipeline"
	"github.com/jonathan/listing-insights/internal/report"
	"github.com/jonathan/listing-insights/internal/vision"
)

func TestPrintListing(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintListing(&listing.ParsedListing{
		Identifier:  "B000000001",
		Title:       "Example Product",
		Price:       6.49,
		Rating:      4.7,
		ReviewCount: 2347,
		Bullets:     []string{"Durable stainless steel construction", "Keeps drinks cold for 24 hours", "Leak-proof flip lid", "Fits standard cup holders"},
	})
	output := buf.String()

	assert.Contains(t, output, "PARSED LISTING B000000001")
	assert.Contains(t, output, "Example Product")
	assert.Contains(t, output, "$6.49")
	assert.Contains(t, output, "4.7/5 (2347 reviews)")
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintListing_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintListing(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAnalyses(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalyses("B000000001", []vision.ImageAnalysis{
		{
			URL:       "https://m.media-amazon.com/images/I/abc._AC_SL1500_.jpg",
			Labels:    []vision.Label{{Name: "Bottle", Confidence: 98}, {Name: "Drink", Confidence: 91}},
			FaceCount: 1,
		},
	})
	output := buf.String()

	assert.Contains(t, output, "IMAGE ANALYSIS B000000001")
	assert.Contains(t, output, "faces=1")
	assert.Contains(t, output, "Bottle, Drink")
}

func TestPrintAnalyses_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalyses("B000000001", nil)

	assert.Empty(t, buf.String())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&report.Report{
		Summary:             "Three listings tracked this month.",
		CompetitiveInsights: []string{"Cheapest listing has the most reviews."},
		Recommendations:     []string{"Raise the price of the bestseller.", "Replace low-res images."},
	})
	output := buf.String()

	assert.Contains(t, output, "COMPETITIVE REPORT")
	assert.Contains(t, output, "Three listings tracked")
	assert.Contains(t, output, "1. Raise the price of the bestseller.")
}

func TestPrintErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintErrors([]pipeline.ErrorEntry{
		{Stage: pipeline.StageFetch, Identifier: "B000000002", Message: "fetch timed out"},
		{Stage: pipeline.StageFetch, Identifier: "B000000003", Message: "HTTP 429"},
		{Stage: pipeline.StageReport, Message: "model overloaded"},
	})
	output := buf.String()

	assert.Contains(t, output, "RUN ERROR LOG")
	assert.Contains(t, output, "Logged 3 errors")
	assert.Contains(t, output, "fetch: 2")
	assert.Contains(t, output, "report: 1")
	assert.Contains(t, output, "B000000002")
}

func TestPrintErrors_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintErrors(nil)

	assert.Contains(t, buf.String(), "NO ERRORS LOGGED")
}
