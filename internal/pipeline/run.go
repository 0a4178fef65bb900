package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/listing-insights/internal/identifier"
	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/report"
	"github.com/jonathan/listing-insights/internal/schemas"
	"github.com/jonathan/listing-insights/internal/scrape"
	"github.com/jonathan/listing-insights/internal/vision"
)

// IdentifierSource yields the raw identifier rows for a run, typically
// from the input spreadsheet.
type IdentifierSource interface {
	Identifiers(ctx context.Context) ([]string, error)
}

// BatchScraper runs the fetch+parse loop over validated identifiers.
type BatchScraper interface {
	Run(ctx context.Context, ids []string) *scrape.Result
}

// ImageCollector analyzes the image prefix of every listing.
type ImageCollector interface {
	Collect(ctx context.Context, listings map[string]*listing.ParsedListing) *vision.Result
}

// Synthesizer produces the competitive report from the run data.
type Synthesizer func(ctx context.Context, listings map[string]*listing.ParsedListing, analyses map[string][]vision.ImageAnalysis) (*report.Report, error)

// EmailSender delivers the formatted report. Failures degrade to log
// entries, never abort the run.
type EmailSender interface {
	Send(ctx context.Context, state *RunState) error
}

// ArchiveUploader stores the serialized run document, returning a file ID.
type ArchiveUploader interface {
	Upload(ctx context.Context, filename string, doc []byte) (string, error)
}

// ArtifactStore persists the run for later inspection. Optional;
// persistence failures only warn.
type ArtifactStore interface {
	SaveRun(ctx context.Context, state *RunState) error
}

// Runner wires the pipeline stages. Optional collaborators (Email,
// Archive, Store) may be nil and are skipped.
type Runner struct {
	Source     IdentifierSource
	Scraper    BatchScraper
	Collector  ImageCollector
	Synthesize Synthesizer
	Email      EmailSender
	Archive    ArchiveUploader
	Store      ArtifactStore
}

// Run executes the full pipeline. Stages run strictly sequentially; each
// returns a patch folded into the next snapshot. Only an identifier-source
// failure aborts the run — every later failure becomes an error log entry
// and the run continues with whatever partial data exists.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	state := NewRunState()

	fmt.Printf("Step 1/6: Reading identifiers...\n")
	raw, err := r.Source.Identifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading identifiers failed: %w", err)
	}
	ids := identifier.Sanitize(raw)
	fmt.Printf("  %d identifiers (%d rows before validation)\n", len(ids), len(raw))
	state = state.Apply(Patch{Identifiers: ids})

	fmt.Printf("Step 2/6: Scraping %d listings...\n", len(ids))
	scraped := r.Scraper.Run(ctx, state.Identifiers)
	state = state.Apply(Patch{
		Listings: scraped.Listings,
		Errors:   fetchErrors(scraped.Failures),
	})
	fmt.Printf("  %d parsed, %d failed\n", scraped.SuccessCount(), len(scraped.Failures))

	fmt.Printf("Step 3/6: Analyzing listing images...\n")
	analyzed := r.Collector.Collect(ctx, state.Listings)
	state = state.Apply(Patch{
		Analyses: analyzed.Analyses,
		Errors:   imageErrors(analyzed.Failures),
	})

	fmt.Printf("Step 4/6: Synthesizing report...\n")
	generated, err := r.Synthesize(ctx, state.Listings, state.Analyses)
	if err != nil {
		// Hard stage failure: the run proceeds without a report.
		state = state.Apply(Patch{Errors: []ErrorEntry{{Stage: StageReport, Message: err.Error()}}})
		fmt.Printf("  Warning: %v\n", err)
	} else {
		state = state.Apply(Patch{Report: generated})
	}

	fmt.Printf("Step 5/6: Serializing run document...\n")
	doc, docErr := Document(state)
	if docErr != nil {
		state = state.Apply(Patch{Errors: []ErrorEntry{{Stage: StageArchive, Message: fmt.Sprintf("failed to serialize run document: %v", docErr)}}})
	} else if err := schemas.ValidateRunDocument(doc); err != nil {
		state = state.Apply(Patch{Errors: []ErrorEntry{{Stage: StageArchive, Message: fmt.Sprintf("run document failed schema validation: %v", err)}}})
		doc = nil
	}

	fmt.Printf("Step 6/6: Delivering results...\n")
	state = r.deliver(ctx, state, doc)

	if r.Store != nil {
		if err := r.Store.SaveRun(ctx, state); err != nil {
			fmt.Printf("Warning: failed to persist run: %v\n", err)
		}
	}

	fmt.Printf("Done. %d listings, %d errors logged.\n", len(state.Listings), len(state.Errors))
	return state, nil
}

// deliver fans out to the email and archive collaborators concurrently.
// Both are fire-and-forget: a failure becomes a delivery log entry and the
// run is still considered complete.
func (r *Runner) deliver(ctx context.Context, state *RunState, doc []byte) *RunState {
	var mu sync.Mutex
	var entries []ErrorEntry
	sent := false
	fileID := ""

	g, gCtx := errgroup.WithContext(ctx)

	if r.Email != nil {
		g.Go(func() error {
			if err := r.Email.Send(gCtx, state); err != nil {
				mu.Lock()
				entries = append(entries, ErrorEntry{Stage: StageDelivery, Message: fmt.Sprintf("email send failed: %v", err)})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			sent = true
			mu.Unlock()
			return nil
		})
	}

	if r.Archive != nil && doc != nil {
		filename := fmt.Sprintf("listing-insights-run-%s.json", state.RunID)
		g.Go(func() error {
			id, err := r.Archive.Upload(gCtx, filename, doc)
			if err != nil {
				mu.Lock()
				entries = append(entries, ErrorEntry{Stage: StageDelivery, Message: fmt.Sprintf("archive upload failed: %v", err)})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			fileID = id
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	patch := Patch{EmailSent: &sent, Errors: entries}
	if fileID != "" {
		patch.DriveFileID = &fileID
	}
	return state.Apply(patch)
}

// Document serializes the full run state to the archival JSON document.
func Document(state *RunState) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

func fetchErrors(failures []scrape.Failure) []ErrorEntry {
	entries := make([]ErrorEntry, 0, len(failures))
	for _, f := range failures {
		entries = append(entries, ErrorEntry{Stage: StageFetch, Identifier: f.Identifier, Message: f.Message})
	}
	return entries
}

func imageErrors(failures []vision.Failure) []ErrorEntry {
	entries := make([]ErrorEntry, 0, len(failures))
	for _, f := range failures {
		entries = append(entries, ErrorEntry{Stage: StageImageAnalysis, Identifier: f.Identifier, Message: f.Message})
	}
	return entries
}
