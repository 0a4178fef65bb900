package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"sheet_id": "1AbCdEfGhIjKlMnOp",
		"sheet_range": "Listings!A2:A",
		"email_to": "owner@example.com",
		"aws_region": "us-east-1",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1AbCdEfGhIjKlMnOp", cfg.SheetID)
	assert.Equal(t, "Listings!A2:A", cfg.SheetRange)
	assert.Equal(t, "owner@example.com", cfg.EmailTo)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_BadEmail(t *testing.T) {
	cfg := &Config{
		EmailTo: "not-an-address",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestValidate_MissingCredentialsFile(t *testing.T) {
	cfg := &Config{
		GoogleCredentials: "/nonexistent/creds.json",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "google credentials file not found")
}

func TestValidate_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		SheetID: "explicit-sheet",
		EmailTo: "owner@example.com",
	}
	defaults := Config{
		SheetID:    "default-sheet",
		SheetRange: "Sheet1!A:A",
		EmailTo:    "fallback@example.com",
		AWSRegion:  "us-east-1",
		Verbose:    true,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "explicit-sheet", merged.SheetID)
	assert.Equal(t, "owner@example.com", merged.EmailTo)
	assert.Equal(t, "Sheet1!A:A", merged.SheetRange)
	assert.Equal(t, "us-east-1", merged.AWSRegion)
	assert.True(t, merged.Verbose)
}
