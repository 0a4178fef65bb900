package db

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary is a pipeline run record as listed from storage
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	ListingCount int       `json:"listing_count"`
	EmailSent    bool      `json:"email_sent"`
	Status       string    `json:"status"`
}

// Artifact stage constants for known artifact types
const (
	ArtifactListings = "listings"
	ArtifactAnalyses = "analyses"
	ArtifactReport   = "report"
	ArtifactErrors   = "errors"
)
