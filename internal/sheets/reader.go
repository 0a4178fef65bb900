// Package sheets reads the tracked-listing identifiers from a Google
// Sheet. The sheet is the single source of truth for which listings a
// run covers.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRange covers the first column of the first worksheet, which is
// where identifiers live by convention.
const DefaultRange = "Sheet1!A:A"

// Reader pulls identifier rows from one spreadsheet range.
type Reader struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewReader creates a Reader for the given spreadsheet. An empty
// readRange falls back to DefaultRange.
func NewReader(ctx context.Context, credentialsFile, spreadsheetID, readRange string) (*Reader, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if readRange == "" {
		readRange = DefaultRange
	}
	return &Reader{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// Identifiers returns the raw cell values from the configured range,
// one string per row. Validation and deduplication happen downstream;
// this layer only flattens the sheet.
func (r *Reader) Identifiers(ctx context.Context) ([]string, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %q: %w", r.readRange, err)
	}

	rows := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if s, ok := row[0].(string); ok {
			rows = append(rows, s)
		}
	}
	return rows, nil
}
