package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-insights/internal/identifier"
	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/observability"
)

var parseCommand = &cobra.Command{
	Use:   "parse",
	Short: "Parse a saved listing page without fetching",
	Long: `Runs the listing parser against local markdown and HTML captures of a
product page. Useful for debugging extraction against saved fixtures.`,
	RunE: parseCmd,
}

var (
	parseIdentifier string
	parseMarkdown   string
	parseHTML       string
	parseJSON       bool
)

func init() {
	parseCommand.Flags().StringVarP(&parseIdentifier, "id", "i", "", "Product identifier for the captured page (required)")
	parseCommand.Flags().StringVarP(&parseMarkdown, "markdown", "m", "", "Path to the markdown capture")
	parseCommand.Flags().StringVar(&parseHTML, "html", "", "Path to the HTML capture")
	parseCommand.Flags().BoolVar(&parseJSON, "json", false, "Print the parsed listing as JSON instead of a summary")

	_ = parseCommand.MarkFlagRequired("id")

	rootCmd.AddCommand(parseCommand)
}

func parseCmd(_ *cobra.Command, _ []string) error {
	id := identifier.Normalize(parseIdentifier)
	if !identifier.Valid(id) {
		return fmt.Errorf("invalid identifier: %q", parseIdentifier)
	}
	if parseMarkdown == "" && parseHTML == "" {
		return fmt.Errorf("at least one of --markdown or --html is required")
	}

	markdown, err := readOptional(parseMarkdown)
	if err != nil {
		return err
	}
	html, err := readOptional(parseHTML)
	if err != nil {
		return err
	}

	parsed, err := listing.Parse(markdown, html, id)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if parseJSON {
		out, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal listing: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintListing(parsed)
	for _, img := range parsed.Images {
		fmt.Printf("  %-10s %s\n", img.Role, img.URL)
	}
	return nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
