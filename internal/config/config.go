// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input
	SheetID    string `json:"sheet_id,omitempty"`    // Google Sheet holding the tracked identifiers
	SheetRange string `json:"sheet_range,omitempty"` // A1 range of the identifier column

	// Credentials
	ScrapeAPIKey      string `json:"scrape_api_key,omitempty"`     // Scraping API key; empty enables the browser fallback
	GeminiAPIKey      string `json:"gemini_api_key,omitempty"`     // Gemini API key for report synthesis
	GoogleCredentials string `json:"google_credentials,omitempty"` // Path to the Google service-account JSON
	AWSRegion         string `json:"aws_region,omitempty"`         // Region for the image analysis service
	DatabaseURL       string `json:"database_url,omitempty"`       // PostgreSQL connection URL; empty skips archival

	// Delivery
	EmailTo       string `json:"email_to,omitempty" validate:"omitempty,email"` // Report recipient
	EmailFrom     string `json:"email_from,omitempty" validate:"omitempty,email"`
	DriveFolderID string `json:"drive_folder_id,omitempty"` // Target folder for the run document

	// Behavior
	Model      string `json:"model,omitempty"`       // Generation model name
	UseBrowser bool   `json:"use_browser,omitempty"` // Force the headless-browser fetcher
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.GoogleCredentials != "" {
		if _, err := os.Stat(c.GoogleCredentials); os.IsNotExist(err) {
			return fmt.Errorf("config error: google credentials file not found: %s", c.GoogleCredentials)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SheetID == "" {
		result.SheetID = defaults.SheetID
	}
	if result.SheetRange == "" {
		result.SheetRange = defaults.SheetRange
	}
	if result.ScrapeAPIKey == "" {
		result.ScrapeAPIKey = defaults.ScrapeAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.GoogleCredentials == "" {
		result.GoogleCredentials = defaults.GoogleCredentials
	}
	if result.AWSRegion == "" {
		result.AWSRegion = defaults.AWSRegion
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.EmailTo == "" {
		result.EmailTo = defaults.EmailTo
	}
	if result.EmailFrom == "" {
		result.EmailFrom = defaults.EmailFrom
	}
	if result.DriveFolderID == "" {
		result.DriveFolderID = defaults.DriveFolderID
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	// Bool fields: config true wins over default false
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
