package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-insights/internal/config"
	"github.com/jonathan/listing-insights/internal/db"
	"github.com/jonathan/listing-insights/internal/delivery"
	"github.com/jonathan/listing-insights/internal/fetch"
	"github.com/jonathan/listing-insights/internal/listing"
	"github.com/jonathan/listing-insights/internal/llm"
	"github.com/jonathan/listing-insights/internal/observability"
	"github.com/jonathan/listing-insights/internal/pipeline"
	"github.com/jonathan/listing-insights/internal/report"
	"github.com/jonathan/listing-insights/internal/scrape"
	"github.com/jonathan/listing-insights/internal/sheets"
	"github.com/jonathan/listing-insights/internal/vision"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full listing insights pipeline end-to-end",
	Long: `Orchestrates the entire monthly run: sheet read -> scrape -> parse -> image analysis -> report synthesis -> email + Drive delivery -> archival.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runSheetID       string
	runSheetRange    string
	runScrapeAPIKey  string
	runGeminiAPIKey  string
	runGoogleCreds   string
	runAWSRegion     string
	runDatabaseURL   string
	runEmailTo       string
	runEmailFrom     string
	runDriveFolderID string
	runModel         string
	runUseBrowser    bool
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSheetID, "sheet-id", "s", "", "Google Sheet ID holding the tracked identifiers")
	runCommand.Flags().StringVar(&runSheetRange, "sheet-range", "", "A1 range of the identifier column (default Sheet1!A:A)")
	runCommand.Flags().StringVar(&runScrapeAPIKey, "scrape-api-key", "", "Scraping API key (optional, defaults to SCRAPE_API_KEY env var; empty uses the headless browser)")
	runCommand.Flags().StringVar(&runGeminiAPIKey, "gemini-api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runGoogleCreds, "google-credentials", "", "Path to Google service-account JSON (optional, defaults to GOOGLE_APPLICATION_CREDENTIALS)")
	runCommand.Flags().StringVar(&runAWSRegion, "aws-region", "", "AWS region for image analysis (default us-east-1)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var; empty skips archival)")
	runCommand.Flags().StringVar(&runEmailTo, "email-to", "", "Report recipient address")
	runCommand.Flags().StringVar(&runEmailFrom, "email-from", "", "Report sender address (optional)")
	runCommand.Flags().StringVar(&runDriveFolderID, "drive-folder", "", "Drive folder ID for the archived run document (optional)")
	runCommand.Flags().StringVar(&runModel, "model", "", "Generation model name")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Force the headless browser fetcher (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("sheet-id") {
		cfg.SheetID = runSheetID
	}
	if cmd.Flags().Changed("sheet-range") {
		cfg.SheetRange = runSheetRange
	}
	if cmd.Flags().Changed("scrape-api-key") {
		cfg.ScrapeAPIKey = runScrapeAPIKey
	}
	if cmd.Flags().Changed("gemini-api-key") {
		cfg.GeminiAPIKey = runGeminiAPIKey
	}
	if cmd.Flags().Changed("google-credentials") {
		cfg.GoogleCredentials = runGoogleCreds
	}
	if cmd.Flags().Changed("aws-region") {
		cfg.AWSRegion = runAWSRegion
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("email-to") {
		cfg.EmailTo = runEmailTo
	}
	if cmd.Flags().Changed("email-from") {
		cfg.EmailFrom = runEmailFrom
	}
	if cmd.Flags().Changed("drive-folder") {
		cfg.DriveFolderID = runDriveFolderID
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		SheetRange: sheets.DefaultRange,
		AWSRegion:  "us-east-1",
		Model:      llm.DefaultModel,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Environment fallbacks for credentials
	if cfg.ScrapeAPIKey == "" {
		cfg.ScrapeAPIKey = os.Getenv("SCRAPE_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.GoogleCredentials == "" {
		cfg.GoogleCredentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 5: Validate required fields
	if cfg.SheetID == "" {
		return fmt.Errorf("--sheet-id is required (via flag or config)")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --gemini-api-key flag is required")
	}
	if cfg.GoogleCredentials == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable or --google-credentials flag is required")
	}

	runner, cleanup, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printRunDetail(state)
	}

	if len(state.Errors) > 0 {
		fmt.Printf("Run %s finished with %d logged errors.\n", state.RunID, len(state.Errors))
	} else {
		fmt.Printf("Run %s finished cleanly.\n", state.RunID)
	}
	return nil
}

// printRunDetail dumps the run contents to stdout in verbose mode.
func printRunDetail(state *pipeline.RunState) {
	p := observability.NewPrinter(os.Stdout)
	ids := make([]string, 0, len(state.Listings))
	for id := range state.Listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p.PrintListing(state.Listings[id])
		p.PrintAnalyses(id, state.Analyses[id])
	}
	p.PrintReport(state.Report)
	p.PrintErrors(state.Errors)
}

// buildRunner assembles the pipeline collaborators from the merged
// config. The returned cleanup closes every client that needs closing.
func buildRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	source, err := sheets.NewReader(ctx, cfg.GoogleCredentials, cfg.SheetID, cfg.SheetRange)
	if err != nil {
		return nil, cleanup, err
	}

	var fetcher scrape.Fetcher
	if cfg.ScrapeAPIKey != "" && !cfg.UseBrowser {
		fetcher = fetch.NewClient(cfg.ScrapeAPIKey, nil)
	} else {
		fetcher = fetch.NewBrowserClient(cfg.Verbose)
	}
	batch := scrape.New(fetcher)
	batch.Verbose = cfg.Verbose

	analyzer, err := vision.NewRekognitionAnalyzer(cfg.AWSRegion)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to create image analyzer: %w", err)
	}
	collector := vision.NewCollector(analyzer)
	collector.Verbose = cfg.Verbose

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to create generation client: %w", err)
	}
	closers = append(closers, func() { _ = gemini.Close() })

	runner := &pipeline.Runner{
		Source:    source,
		Scraper:   batch,
		Collector: collector,
		Synthesize: func(ctx context.Context, listings map[string]*listing.ParsedListing, analyses map[string][]vision.ImageAnalysis) (*report.Report, error) {
			return report.Synthesize(ctx, gemini, listings, analyses)
		},
	}

	if cfg.EmailTo != "" {
		sender, err := delivery.NewGmailSender(ctx, cfg.GoogleCredentials, cfg.EmailFrom, cfg.EmailTo)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to create email sender: %w", err)
		}
		runner.Email = sender
	}

	uploader, err := delivery.NewDriveUploader(ctx, cfg.GoogleCredentials, cfg.DriveFolderID)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to create drive uploader: %w", err)
	}
	runner.Archive = uploader

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, database.Close)
		runner.Store = database
	}

	return runner, cleanup, nil
}
