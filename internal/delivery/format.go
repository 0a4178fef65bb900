// Package delivery sends the monthly report by email and archives the
// run document to Drive. Both collaborators are fire-and-forget: the
// pipeline logs their failures and moves on.
package delivery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/listing-insights/internal/pipeline"
)

// Subject builds the email subject line for a run.
func Subject(state *pipeline.RunState) string {
	return fmt.Sprintf("Listing Insights Report — %s", state.StartedAt.Format("January 2006"))
}

// Body renders the run as a plain-text email. A missing report section
// degrades to a short notice; the error log is always included when
// non-empty so a silent partial failure can't hide.
func Body(state *pipeline.RunState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Listing Insights — run %s\n", state.RunID)
	fmt.Fprintf(&b, "Started: %s\n", state.StartedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "Listings parsed: %d of %d tracked\n\n", len(state.Listings), len(state.Identifiers))

	writeListingTable(&b, state)

	if state.Report != nil {
		writeReport(&b, state)
	} else {
		b.WriteString("No report was generated for this run; see the errors below.\n\n")
	}

	if len(state.Errors) > 0 {
		fmt.Fprintf(&b, "Errors encountered (%d)\n", len(state.Errors))
		b.WriteString("----------------------\n")
		for _, e := range state.Errors {
			if e.Identifier != "" {
				fmt.Fprintf(&b, "- [%s] %s: %s\n", e.Stage, e.Identifier, e.Message)
			} else {
				fmt.Fprintf(&b, "- [%s] %s\n", e.Stage, e.Message)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeListingTable(b *strings.Builder, state *pipeline.RunState) {
	if len(state.Listings) == 0 {
		return
	}

	ids := make([]string, 0, len(state.Listings))
	for id := range state.Listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b.WriteString("Tracked listings\n")
	b.WriteString("----------------\n")
	for _, id := range ids {
		l := state.Listings[id]
		fmt.Fprintf(b, "%s  $%.2f  %.1f/5 (%d reviews)  %s\n",
			l.Identifier, l.Price, l.Rating, l.ReviewCount, l.Title)
	}
	b.WriteString("\n")
}

func writeReport(b *strings.Builder, state *pipeline.RunState) {
	r := state.Report

	b.WriteString("Summary\n-------\n")
	b.WriteString(strings.TrimSpace(r.Summary))
	b.WriteString("\n\n")

	if len(r.CompetitiveInsights) > 0 {
		b.WriteString("Competitive insights\n--------------------\n")
		for _, item := range r.CompetitiveInsights {
			fmt.Fprintf(b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("Recommendations\n---------------\n")
		for i, item := range r.Recommendations {
			fmt.Fprintf(b, "%d. %s\n", i+1, item)
		}
		b.WriteString("\n")
	}

	if r.ImageQualityAnalysis != "" {
		b.WriteString("Image quality\n-------------\n")
		b.WriteString(strings.TrimSpace(r.ImageQualityAnalysis))
		b.WriteString("\n\n")
	}
}
