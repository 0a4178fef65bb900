// Package db provides PostgreSQL persistence for pipeline runs.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/listing-insights/internal/pipeline"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveRun persists the final run snapshot: one row in pipeline_runs plus
// one artifact row per stage output. Upserts, so a retried run with the
// same ID replaces its previous record.
func (db *DB) SaveRun(ctx context.Context, state *pipeline.RunState) error {
	status := "completed"
	if len(state.Errors) > 0 {
		status = "completed_with_errors"
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, started_at, identifier_count, listing_count, email_sent, drive_file_id, status, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   listing_count = $4, email_sent = $5, drive_file_id = $6, status = $7, completed_at = NOW()`,
		state.RunID, state.StartedAt, len(state.Identifiers), len(state.Listings),
		state.EmailSent, state.DriveFileID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if err := db.saveArtifact(ctx, state.RunID, ArtifactListings, state.Listings); err != nil {
		return err
	}
	if err := db.saveArtifact(ctx, state.RunID, ArtifactAnalyses, state.Analyses); err != nil {
		return err
	}
	if state.Report != nil {
		if err := db.saveArtifact(ctx, state.RunID, ArtifactReport, state.Report); err != nil {
			return err
		}
	}
	if err := db.saveArtifact(ctx, state.RunID, ArtifactErrors, state.Errors); err != nil {
		return err
	}
	return nil
}

// saveArtifact stores one stage output as a JSONB artifact row
func (db *DB) saveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal %s artifact: %w", stage, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s artifact: %w", stage, err)
	}
	return nil
}

// GetArtifact retrieves a stage artifact for a run. Returns nil with no
// error when the artifact does not exist.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, stage string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM run_artifacts WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s artifact: %w", stage, err)
	}
	return content, nil
}

// ListRuns returns the most recent run summaries, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, started_at, listing_count, email_sent, status
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.ListingCount, &r.EmailSent, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
