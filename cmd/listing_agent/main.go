// Package main provides the entry point for the listing insights CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "listing_agent",
	Short: "Monthly listing insights pipeline",
	Long:  "Listing Insights scrapes tracked product listings, analyzes their images, synthesizes a competitive report, and delivers it by email and Drive.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
