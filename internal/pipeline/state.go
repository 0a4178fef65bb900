// Package pipeline orchestrates the monthly run: identifiers in, parsed
// listings, image analyses, a synthesized report, and delivery out.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/report"
	"github.com/jonathan/listing-insights/internal/vision"
)

// Stage names used in the run error log.
const (
	StageFetch         = "fetch"
	StageImageAnalysis = "imageAnalysis"
	StageReport        = "report"
	StageDelivery      = "delivery"
	StageArchive       = "archive"
)

// ErrorEntry is one append-only error log record. The log accumulates
// across the whole run and is included in the delivered report.
type ErrorEntry struct {
	Stage      string `json:"stage"`
	Identifier string `json:"identifier,omitempty"`
	Message    string `json:"message"`
}

// RunState is the aggregate threaded through all stages. Stages never
// mutate it: each receives the current snapshot and returns a Patch that
// the orchestrator folds into the next snapshot.
type RunState struct {
	RunID       uuid.UUID                           `json:"run_id"`
	StartedAt   time.Time                           `json:"started_at"`
	Identifiers []string                            `json:"identifiers"`
	Listings    map[string]*listing.ParsedListing   `json:"listings"`
	Analyses    map[string][]vision.ImageAnalysis   `json:"analyses"`
	Report      *report.Report                      `json:"report,omitempty"`
	EmailSent   bool                                `json:"email_sent"`
	DriveFileID string                              `json:"drive_file_id,omitempty"`
	Errors      []ErrorEntry                        `json:"errors"`
}

// NewRunState creates an empty run snapshot. Containers are initialized so
// absence always means empty, never nil.
func NewRunState() *RunState {
	return &RunState{
		RunID:       uuid.New(),
		StartedAt:   time.Now().UTC(),
		Identifiers: []string{},
		Listings:    map[string]*listing.ParsedListing{},
		Analyses:    map[string][]vision.ImageAnalysis{},
		Errors:      []ErrorEntry{},
	}
}

// Patch is one stage's partial update. Nil fields leave the corresponding
// snapshot field untouched; Errors are appended, never replaced.
type Patch struct {
	Identifiers []string
	Listings    map[string]*listing.ParsedListing
	Analyses    map[string][]vision.ImageAnalysis
	Report      *report.Report
	EmailSent   *bool
	DriveFileID *string
	Errors      []ErrorEntry
}

// Apply folds a patch into the snapshot, returning a new snapshot. The
// previous snapshot is left unchanged; nothing is ever rolled back.
func (s *RunState) Apply(p Patch) *RunState {
	next := *s

	if p.Identifiers != nil {
		next.Identifiers = p.Identifiers
	}
	if p.Listings != nil {
		next.Listings = p.Listings
	}
	if p.Analyses != nil {
		next.Analyses = p.Analyses
	}
	if p.Report != nil {
		next.Report = p.Report
	}
	if p.EmailSent != nil {
		next.EmailSent = *p.EmailSent
	}
	if p.DriveFileID != nil {
		next.DriveFileID = *p.DriveFileID
	}
	if len(p.Errors) > 0 {
		merged := make([]ErrorEntry, 0, len(s.Errors)+len(p.Errors))
		merged = append(merged, s.Errors...)
		merged = append(merged, p.Errors...)
		next.Errors = merged
	}

	return &next
}
