package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnownListing(t *testing.T) {
	markdown := "4.7 out of 5 stars\n2,347 ratings\n$6.49"
	html := `<html><body><span id="productTitle"> Example Product </span></body></html>`

	result, err := Parse(markdown, html, "B08N5WRWNW")
	require.NoError(t, err)

	assert.Equal(t, "B08N5WRWNW", result.Identifier)
	assert.Equal(t, "Example Product", result.Title)
	assert.InDelta(t, 6.49, result.Price, 0.001)
	assert.InDelta(t, 4.7, result.Rating, 0.001)
	assert.Equal(t, 2347, result.ReviewCount)
	assert.False(t, result.ParsedAt.IsZero())
}

func TestParseIsTotal(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		html     string
	}{
		{"Both empty", "", ""},
		{"Garbage markdown", "\x00\xff<<<[[", ""},
		{"Unclosed HTML", "", "<div><span id=\"productTitle\">x"},
		{"Huge whitespace", strings.Repeat(" \n", 1000), strings.Repeat("<p>", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.markdown, tt.html, "B000000000")
			require.NoError(t, err)
			require.NotNil(t, result)

			// Sentinels, never negative or missing
			assert.GreaterOrEqual(t, result.Price, 0.0)
			assert.GreaterOrEqual(t, result.Rating, 0.0)
			assert.GreaterOrEqual(t, result.ReviewCount, 0)
			assert.NotNil(t, result.Bullets)
			assert.NotNil(t, result.Images)
		})
	}
}

func TestExtractTitleCascade(t *testing.T) {
	longHeading := "# Premium Stainless Steel Water Bottle with Double Wall Vacuum Insulation"
	longBody := "Premium Stainless Steel Water Bottle with Double Wall Vacuum Insulation Technology"

	tests := []struct {
		name     string
		markdown string
		html     string
		expected string
	}{
		{
			name:     "HTML title element wins",
			markdown: longHeading,
			html:     `<span id="productTitle">HTML Title</span>`,
			expected: "HTML Title",
		},
		{
			name:     "Markdown heading fallback",
			markdown: "# Skip to main content\n" + longHeading,
			html:     "<html></html>",
			expected: strings.TrimPrefix(longHeading, "# "),
		},
		{
			name:     "Short headings are skipped",
			markdown: "# Short heading\n" + longBody,
			html:     "",
			expected: longBody,
		},
		{
			name:     "Sentinel when nothing qualifies",
			markdown: "# Short\nshort line",
			html:     "",
			expected: UnknownTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.markdown, tt.html, "B000000000")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Title)
		})
	}
}

func TestExtractPriceForms(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected float64
	}{
		{"Dollar form", "Buy now for $19.99 today", 19.99},
		{"Price label form", "Price: $7", 7},
		{"USD suffix form", "costs 12.50 USD", 12.50},
		{"Thousands separator", "$1,299.00 list", 1299},
		{"No match", "no money here", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, extractPrice(tt.markdown), 0.001)
		})
	}
}

func TestExtractRatingForms(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected float64
	}{
		{"Out of 5 stars", "4.3 out of 5 stars", 4.3},
		{"Star glyph", "4.5★", 4.5},
		{"Stars suffix", "rated 3.9 stars overall", 3.9},
		{"Above scale rejected", "9.9★", 0},
		{"No match", "no rating", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, extractRating(tt.markdown), 0.001)
		})
	}
}

func TestExtractReviewCountForms(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected int
	}{
		{"Ratings form", "2,347 ratings", 2347},
		{"Reviews form", "152 reviews", 152},
		{"Customer reviews form", "87 customer reviews", 87},
		{"No match", "nothing here", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractReviewCount(tt.markdown))
		})
	}
}

func TestExtractBulletsHTMLPathPreferred(t *testing.T) {
	html := `<div id="feature-bullets"><ul>
		<li><span class="a-list-item">  Durable double wall vacuum insulation keeps drinks cold  </span></li>
		<li><span class="a-list-item">short</span></li>
		<li><span class="a-list-item">Leak proof lid with built-in carry loop for travel</span></li>
	</ul></div>`
	markdown := "- This markdown bullet should be ignored because HTML matched"

	result, err := Parse(markdown, html, "B000000000")
	require.NoError(t, err)

	require.Len(t, result.Bullets, 2)
	assert.Equal(t, "Durable double wall vacuum insulation keeps drinks cold", result.Bullets[0])
	assert.Equal(t, "Leak proof lid with built-in carry loop for travel", result.Bullets[1])
}

func TestExtractBulletsMarkdownFallback(t *testing.T) {
	markdown := strings.Join([]string{
		"- Durable double wall vacuum insulation keeps drinks cold",
		"- short",
		"* Leak proof lid with built-in carry loop for travel",
		"- Customer questions & answers section should be filtered",
		"- Previous page of related sponsored products listing",
		"- 4.0 out of 5 stars review meta line should be filtered",
	}, "\n")

	result, err := Parse(markdown, "<html></html>", "B000000000")
	require.NoError(t, err)

	require.Len(t, result.Bullets, 2)
	assert.Equal(t, "Durable double wall vacuum insulation keeps drinks cold", result.Bullets[0])
	assert.Equal(t, "Leak proof lid with built-in carry loop for travel", result.Bullets[1])
}

func TestBulletBounds(t *testing.T) {
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, fmt.Sprintf("- Feature number %02d with enough detail to pass the filter", i))
	}
	result, err := Parse(strings.Join(lines, "\n"), "", "B000000000")
	require.NoError(t, err)

	assert.Len(t, result.Bullets, MaxBullets)
	for _, b := range result.Bullets {
		assert.GreaterOrEqual(t, len(b), MinBulletLength)
		assert.Less(t, len(b), MaxBulletLength)
	}
}

func TestExtractDescription(t *testing.T) {
	markdown := strings.Join([]string{
		"intro text",
		"",
		"## Product Description",
		"First paragraph line one.",
		"First paragraph line two.",
		"",
		"unrelated section",
	}, "\n")

	result, err := Parse(markdown, "", "B000000000")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph line one.\nFirst paragraph line two.", result.Description)
}

func TestExtractDescriptionCapped(t *testing.T) {
	markdown := "About this item\n" + strings.Repeat("x", 3*MaxDescriptionLen)
	result, err := Parse(markdown, "", "B000000000")
	require.NoError(t, err)
	assert.Len(t, result.Description, MaxDescriptionLen)
}
