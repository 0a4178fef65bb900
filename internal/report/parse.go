package report

import (
	"regexp"
	"strings"
)

// minListItemLength filters stray short lines out of list sections.
const minListItemLength = 10

var (
	// headingLine matches any markdown heading line.
	headingLine = regexp.MustCompile(`(?m)^#{1,6}\s`)

	// listMarker matches a -, * or numbered list marker at line start.
	listMarker = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s+`)
)

// ParseResponse locates the four expected section headings in the model
// output and extracts each section's content. A missing heading yields an
// empty string or list rather than an error.
func ParseResponse(text string) *Report {
	return &Report{
		Summary:              section(text, "Summary"),
		CompetitiveInsights:  parseList(section(text, "Competitive Insights")),
		Recommendations:      parseList(section(text, "Recommendations")),
		ImageQualityAnalysis: section(text, "Image Quality Analysis"),
	}
}

// section returns the text between the named heading and the next heading
// (or end of input), trimmed. Empty when the heading is absent.
func section(text, heading string) string {
	pattern := regexp.MustCompile(`(?mi)^#{1,6}\s*` + regexp.QuoteMeta(heading) + `\s*$`)
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	if next := headingLine.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return strings.TrimSpace(rest)
}

// parseList splits a section into list items: lines carrying a list marker,
// with the marker stripped, long enough to be real content.
func parseList(sectionText string) []string {
	items := []string{}
	if sectionText == "" {
		return items
	}

	for _, line := range strings.Split(sectionText, "\n") {
		marker := listMarker.FindString(line)
		if marker == "" {
			continue
		}
		item := strings.TrimSpace(line[len(marker):])
		if len(item) > minListItemLength {
			items = append(items, item)
		}
	}
	return items
}
