package listing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UnknownTitle is the sentinel used when no title strategy yields a value.
const UnknownTitle = "Unknown Title"

// Extraction bounds.
const (
	MaxBullets        = 10
	MinBulletLength   = 20
	MaxBulletLength   = 500
	MaxDescriptionLen = 2000

	// minTitleLength filters markdown headings and body lines: anything
	// shorter is assumed to be navigation or accessibility text.
	minTitleLength = 50
)

// Each field tries an ordered list of patterns against the markdown view;
// the first match wins. Literal English phrasing only — localized pages are
// out of scope.
var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$(\d+(?:,\d{3})*\.\d{2})`),
		regexp.MustCompile(`(?i)Price:\s*\$(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(\d+\.\d{2})\s*USD`),
	}

	ratingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d(?:\.\d)?)\s+out of 5 stars`),
		regexp.MustCompile(`(\d(?:\.\d)?)\s*★`),
		regexp.MustCompile(`(\d(?:\.\d)?)\s+stars`),
	}

	reviewCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([\d,]+)\s+ratings`),
		regexp.MustCompile(`([\d,]+)\s+reviews`),
		regexp.MustCompile(`([\d,]+)\s+customer reviews`),
	}

	descriptionPattern = regexp.MustCompile(
		`(?is)(?:^|\n)#{0,4}\s*(?:product description|about this item|about this product|description)\s*:?\s*\n+(.+?)(?:\n\s*\n|\z)`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// titleDenylist holds lowercase phrases that disqualify a markdown heading
// from being the product title.
var titleDenylist = []string{
	"skip to main content",
	"keyboard shortcuts",
	"main menu",
	"navigation",
	"search results",
}

// bulletDenylist holds lowercase fragments that mark a markdown bullet line
// as page furniture rather than a product feature.
var bulletDenylist = []string{
	"customer questions",
	"q&a",
	"technical details",
	"product information",
	"previous page",
	"next page",
	"people found this helpful",
	"report abuse",
	"verified purchase",
	"out of 5 stars",
}

// Parse extracts a structured listing record from the two textual views of
// a product page. It is pure and deterministic: malformed or absent data
// falls back to per-field sentinels, and a success result is returned for
// any pair of input strings. Only an internal panic escalates to the typed
// failure path.
func Parse(markdown, html, id string) (result *ParsedListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ParseError{
				Identifier: id,
				Message:    fmt.Sprintf("internal failure: %v", r),
			}
		}
	}()

	// A parse failure here means the HTML view is unusable; every HTML
	// strategy then reports "no match" and the markdown paths take over.
	var doc *goquery.Document
	if d, derr := goquery.NewDocumentFromReader(strings.NewReader(html)); derr == nil {
		doc = d
	}

	result = &ParsedListing{
		Identifier:  id,
		Title:       extractTitle(markdown, doc),
		Price:       extractPrice(markdown),
		Rating:      extractRating(markdown),
		ReviewCount: extractReviewCount(markdown),
		Bullets:     extractBullets(markdown, doc),
		Description: extractDescription(markdown),
		Images:      ExtractImages(markdown, html, doc),
		ParsedAt:    time.Now().UTC(),
	}
	return result, nil
}

// firstValue runs extraction strategies in order and returns the first
// non-empty result.
func firstValue(strategies ...func() (string, bool)) (string, bool) {
	for _, strategy := range strategies {
		if v, ok := strategy(); ok {
			return v, true
		}
	}
	return "", false
}

// firstPattern returns the first capture group of the first pattern that
// matches text.
func firstPattern(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

func extractTitle(markdown string, doc *goquery.Document) string {
	title, ok := firstValue(
		func() (string, bool) { return titleFromHTML(doc) },
		func() (string, bool) { return titleFromHeadings(markdown) },
		func() (string, bool) { return titleFromBody(markdown) },
	)
	if !ok {
		return UnknownTitle
	}
	return title
}

// titleFromHTML reads the well-known product title element.
func titleFromHTML(doc *goquery.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	title := collapseWhitespace(doc.Find("span#productTitle").First().Text())
	return title, title != ""
}

// titleFromHeadings takes the first long markdown heading that is not a
// known accessibility or navigation phrase.
func titleFromHeadings(markdown string) (string, bool) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if len(heading) <= minTitleLength || onDenylist(heading, titleDenylist) {
			continue
		}
		return heading, true
	}
	return "", false
}

// titleFromBody falls back to the first sufficiently long body-text line.
func titleFromBody(markdown string) (string, bool) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > minTitleLength && !strings.HasPrefix(trimmed, "#") {
			return trimmed, true
		}
	}
	return "", false
}

func extractPrice(markdown string) float64 {
	raw, ok := firstPattern(markdown, pricePatterns)
	if !ok {
		return 0
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

func extractRating(markdown string) float64 {
	raw, ok := firstPattern(markdown, ratingPatterns)
	if !ok {
		return 0
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil || rating < 0 || rating > 5 {
		return 0
	}
	return rating
}

func extractReviewCount(markdown string) int {
	raw, ok := firstPattern(markdown, reviewCountPatterns)
	if !ok {
		return 0
	}
	count, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil || count < 0 {
		return 0
	}
	return count
}

// extractBullets prefers the structural HTML feature list; the markdown
// view is only consulted when the HTML path yields nothing.
func extractBullets(markdown string, doc *goquery.Document) []string {
	bullets := bulletsFromHTML(doc)
	if len(bullets) == 0 {
		bullets = bulletsFromMarkdown(markdown)
	}
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	return bullets
}

func bulletsFromHTML(doc *goquery.Document) []string {
	bullets := []string{}
	if doc == nil {
		return bullets
	}
	doc.Find("#feature-bullets span.a-list-item, #featurebullets_feature_div span.a-list-item").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if usableBulletLength(text) {
			bullets = append(bullets, text)
		}
	})
	return bullets
}

func bulletsFromMarkdown(markdown string) []string {
	bullets := []string{}
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		var text string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			text = strings.TrimSpace(trimmed[2:])
		case strings.HasPrefix(trimmed, "* "):
			text = strings.TrimSpace(trimmed[2:])
		default:
			continue
		}
		if !usableBulletLength(text) || onDenylist(text, bulletDenylist) {
			continue
		}
		bullets = append(bullets, text)
	}
	return bullets
}

func usableBulletLength(text string) bool {
	return len(text) >= MinBulletLength && len(text) < MaxBulletLength
}

// extractDescription captures the block following a description-style
// heading up to the next blank-separated boundary, capped in length.
func extractDescription(markdown string) string {
	m := descriptionPattern.FindStringSubmatch(markdown)
	if len(m) < 2 {
		return ""
	}
	description := strings.TrimSpace(m[1])
	if len(description) > MaxDescriptionLen {
		description = description[:MaxDescriptionLen]
	}
	return description
}

func onDenylist(text string, denylist []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range denylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
