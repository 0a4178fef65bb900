package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `Here is the analysis you asked for.

## Summary
Three listings tracked this month. Prices range from $6.49 to $24.99 and
ratings cluster around 4.5.

## Competitive Insights
- The cheapest listing also carries the highest review count by far.
- Two listings share nearly identical feature bullets.
* Only one listing uses lifestyle imagery with people in frame.

## Recommendations
1. Consider raising the price of the bestselling listing toward the mid-point.
2) Replace the low-resolution secondary images on the second listing.
- Add on-image text calling out the warranty period.

## Image Quality Analysis
Label coverage is strong across all listings; no moderation flags were raised.
`

func TestParseResponseAllSections(t *testing.T) {
	report := ParseResponse(sampleResponse)

	assert.Contains(t, report.Summary, "Three listings tracked")
	assert.Contains(t, report.Summary, "cluster around 4.5")

	require.Len(t, report.CompetitiveInsights, 3)
	assert.Equal(t, "The cheapest listing also carries the highest review count by far.", report.CompetitiveInsights[0])
	assert.Equal(t, "Only one listing uses lifestyle imagery with people in frame.", report.CompetitiveInsights[2])

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, "Consider raising the price of the bestselling listing toward the mid-point.", report.Recommendations[0])
	assert.Equal(t, "Replace the low-resolution secondary images on the second listing.", report.Recommendations[1])

	assert.Contains(t, report.ImageQualityAnalysis, "Label coverage is strong")
}

func TestParseResponsePreservesListOrderAndCount(t *testing.T) {
	var lines []string
	for i := 0; i < 7; i++ {
		lines = append(lines, fmt.Sprintf("- Recommendation number %d with enough words", i))
	}
	text := "## Recommendations\n" + strings.Join(lines, "\n")

	report := ParseResponse(text)

	require.Len(t, report.Recommendations, 7)
	for i, item := range report.Recommendations {
		assert.Equal(t, fmt.Sprintf("Recommendation number %d with enough words", i), item)
	}
}

func TestParseResponseMissingHeadings(t *testing.T) {
	report := ParseResponse("The model went off script and wrote freeform prose.")

	assert.Empty(t, report.Summary)
	assert.Empty(t, report.ImageQualityAnalysis)
	assert.NotNil(t, report.CompetitiveInsights)
	assert.Empty(t, report.CompetitiveInsights)
	assert.NotNil(t, report.Recommendations)
	assert.Empty(t, report.Recommendations)
}

func TestParseResponseFiltersShortLines(t *testing.T) {
	text := strings.Join([]string{
		"## Recommendations",
		"- Keep this full length recommendation line.",
		"- too short",
		"- ok",
		"not a list line at all but reasonably long",
	}, "\n")

	report := ParseResponse(text)

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "Keep this full length recommendation line.", report.Recommendations[0])
}

func TestParseResponseCaseInsensitiveHeadings(t *testing.T) {
	text := "## summary\nlowercase heading still anchors the section."

	report := ParseResponse(text)
	assert.Contains(t, report.Summary, "lowercase heading")
}
