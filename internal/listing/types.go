// Package listing provides the pure parser that turns raw scraped page
// content into a structured product listing record.
package listing

import "time"

// ImageRole classifies where an image belongs on the listing page.
type ImageRole string

// Image role constants.
const (
	// RoleMain is the primary gallery image. At most one image carries it.
	RoleMain ImageRole = "main"
	// RoleSecondary is any other gallery image.
	RoleSecondary ImageRole = "secondary"
	// RoleEnrichment marks images found inside supplementary marketing
	// content sections, distinct from the primary gallery.
	RoleEnrichment ImageRole = "enrichment"
)

// ImageRef is one deduplicated listing image, rewritten to its canonical
// high-resolution URL.
type ImageRef struct {
	URL      string    `json:"url"`
	Role     ImageRole `json:"role"`
	Position int       `json:"position"` // 1-based, stable insertion order
}

// ParsedListing is the structured extraction result for one identifier.
// Bullets and Images are never nil: absence means an empty slice. Price,
// Rating and ReviewCount use 0 as the "not found" sentinel.
type ParsedListing struct {
	Identifier  string     `json:"identifier"`
	Title       string     `json:"title"`
	Price       float64    `json:"price"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Bullets     []string   `json:"bullets"`
	Description string     `json:"description"`
	Images      []ImageRef `json:"images"`
	ParsedAt    time.Time  `json:"parsed_at"`
}

// RawContent holds the two textual views of a fetched product page plus
// fetch metadata. Immutable once captured.
type RawContent struct {
	Markdown      string    `json:"markdown"`
	HTML          string    `json:"html"`
	ScreenshotURL string    `json:"screenshot_url,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}
