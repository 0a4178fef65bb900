// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/pipeline"
	"github.com/jonathan/listing-insights/internal/report"
	"github.com/jonathan/listing-insights/internal/vision"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintListing outputs a human-readable summary of one parsed listing.
func (p *Printer) PrintListing(l *listing.ParsedListing) {
	if l == nil {
		return
	}

	var sb strings.Builder

	title := l.Title
	if len(title) > 45 {
		title = title[:42] + "..."
	}
	sb.WriteString(fmt.Sprintf("Title:    %s\n", title))
	sb.WriteString(fmt.Sprintf("Price:    $%.2f\n", l.Price))
	sb.WriteString(fmt.Sprintf("Rating:   %.1f/5 (%d reviews)\n", l.Rating, l.ReviewCount))
	sb.WriteString(fmt.Sprintf("Images:   %d\n", len(l.Images)))

	if len(l.Bullets) > 0 {
		sb.WriteString("\nBullets:\n")
		count := min(len(l.Bullets), 3)
		for i := 0; i < count; i++ {
			bullet := l.Bullets[i]
			if len(bullet) > 50 {
				bullet = bullet[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", bullet))
		}
		if len(l.Bullets) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(l.Bullets)-3))
		}
	}

	p.printBox("PARSED LISTING "+l.Identifier, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalyses outputs the image analysis results for one listing.
func (p *Printer) PrintAnalyses(id string, analyses []vision.ImageAnalysis) {
	if len(analyses) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Images analyzed: %d\n\n", len(analyses)))

	for i, a := range analyses {
		sb.WriteString(fmt.Sprintf("#%d  faces=%d flags=%d\n", i+1, a.FaceCount, len(a.ModerationFlags)))
		if len(a.Labels) > 0 {
			names := make([]string, 0, len(a.Labels))
			for _, l := range a.Labels {
				names = append(names, l.Name)
			}
			labels := strings.Join(names, ", ")
			if len(labels) > 45 {
				labels = labels[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Labels: %s\n", labels))
		}
		if i < len(analyses)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("IMAGE ANALYSIS "+id, sb.String())
}

// PrintReport outputs the synthesized report section by section.
func (p *Printer) PrintReport(r *report.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	summary := strings.TrimSpace(r.Summary)
	if len(summary) > 200 {
		summary = summary[:197] + "..."
	}
	sb.WriteString(summary)
	sb.WriteString("\n")

	if len(r.CompetitiveInsights) > 0 {
		sb.WriteString("\nInsights:\n")
		count := min(len(r.CompetitiveInsights), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := r.CompetitiveInsights[i]
			if len(item) > 50 {
				item = item[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", item))
		}
		if len(r.CompetitiveInsights) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.CompetitiveInsights)-maxItemsToShow))
		}
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		count := min(len(r.Recommendations), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := r.Recommendations[i]
			if len(item) > 50 {
				item = item[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
		}
		if len(r.Recommendations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Recommendations)-maxItemsToShow))
		}
	}

	p.printBox("COMPETITIVE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintErrors outputs the accumulated run error log.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintErrors(entries []pipeline.ErrorEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ERRORS LOGGED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	byStage := map[string]int{}
	for _, e := range entries {
		byStage[e.Stage]++
	}
	stages := make([]string, 0, len(byStage))
	for s := range byStage {
		stages = append(stages, s)
	}
	sort.Strings(stages)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Logged %d errors:\n\n", len(entries)))
	for _, s := range stages {
		sb.WriteString(fmt.Sprintf("⚠ %s: %d\n", s, byStage[s]))
	}
	sb.WriteString("\n")

	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		msg := e.Message
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		if e.Identifier != "" {
			sb.WriteString(fmt.Sprintf("  %s %s\n", e.Identifier, msg))
		} else {
			sb.WriteString(fmt.Sprintf("  %s\n", msg))
		}
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("RUN ERROR LOG", strings.TrimSuffix(sb.String(), "\n"))
}
