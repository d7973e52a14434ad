package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"leadscout/config"
	"leadscout/models"
	"leadscout/scraper/apify"
	"leadscout/scraper/places"
	"leadscout/scraper/website"
	"leadscout/services"
	"leadscout/storage"
	"leadscout/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	var (
		source     = flag.String("source", "", "lead source: tiktok | instagram | maps")
		searchType = flag.String("type", models.SearchTypeProfile, "search type: profile | hashtag | place")
		query      = flag.String("query", "", "search query")
		limit      = flag.Int("limit", cfg.ResultsLimit, "maximum results to request")
		notes      = flag.String("notes", "", "notes attached to saved leads")
		csvOut     = flag.Bool("csv", false, "also write new leads to the configured CSV path")
		export     = flag.Bool("export", false, "export stored leads to a new spreadsheet tab and exit")
		stats      = flag.Bool("stats", false, "print lead insights and exit")
	)
	flag.Parse()

	logger.Info("=== Leadscout starting ===")
	logger.Info("Config — concurrency: %d | rate: %dms | results limit: %d | poll: %ds | max wait: %ds",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.ResultsLimit, cfg.ApifyPollSeconds, cfg.ApifyMaxWaitSeconds)

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure the database is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *stats:
		printReport(pgWriter, logger)
	case *export:
		runExport(ctx, cfg, pgWriter, *query, *source, logger)
	default:
		runSearch(ctx, cfg, pgWriter, *source, *searchType, *query, *limit, *notes, *csvOut, logger)
	}
}

// runSearch drives one discovery run end to end: search, dedupe into
// Postgres, mirror to CSV/Sheets, then print the refreshed insights.
func runSearch(ctx context.Context, cfg *config.Config, pgWriter *storage.PostgresWriter,
	source, searchType, query string, limit int, notes string, csvOut bool, logger *utils.Logger) {

	if source == "" || query == "" {
		logger.Error("Both -source and -query are required for a search")
		flag.Usage()
		os.Exit(2)
	}
	if source != "maps" && source != models.PlatformTikTok && source != models.PlatformInstagram {
		logger.Error("Unknown source %q — use tiktok, instagram or maps", source)
		os.Exit(2)
	}

	runID := uuid.New().String()
	runLogger := logger.WithPrefix("RUN " + runID[:8])
	runLogger.Info("Search %q (source: %s, type: %s)", query, source, searchType)

	run := &models.SearchRun{
		RunID:  runID,
		Query:  query,
		Source: leadSource(source),
		Status: models.RunStatusRunning,
	}
	if err := pgWriter.CreateSearchRun(run); err != nil {
		runLogger.Warn("Could not record search run: %v", err)
	}

	disc := services.NewDiscovery(
		services.DiscoveryConfig{MaxConcurrency: cfg.MaxConcurrency, RateLimitMs: cfg.RateLimitMs},
		apify.New(apify.Config{
			BaseURL:        cfg.ApifyBaseURL,
			Token:          cfg.ApifyToken,
			TikTokActor:    cfg.ApifyTikTokActor,
			InstagramActor: cfg.ApifyInstagramActor,
			PollInterval:   time.Duration(cfg.ApifyPollSeconds) * time.Second,
			MaxWait:        time.Duration(cfg.ApifyMaxWaitSeconds) * time.Second,
			ResultsLimit:   limit,
		}, runLogger),
		places.New(places.Config{
			APIKey:     cfg.GoogleMapsAPIKey,
			MaxRetries: cfg.MaxRetries,
		}, runLogger),
		website.New(website.Config{
			RenderJS:  cfg.RenderJS,
			ChromeBin: cfg.ChromeBin,
		}, runLogger),
		runLogger,
	)

	var leads []*models.Lead
	var err error
	if source == "maps" {
		leads, err = searchMaps(ctx, disc, query, limit, notes, runLogger)
	} else {
		leads, err = searchSocial(ctx, disc, source, searchType, query, notes, runLogger)
	}
	if err != nil {
		if ferr := pgWriter.FinishSearchRun(runID, models.RunStatusFailed, 0, 0); ferr != nil {
			runLogger.Warn("Could not record run failure: %v", ferr)
		}
		runLogger.Error("Search failed: %v", err)
		os.Exit(1)
	}

	found := len(leads)
	saved, err := pgWriter.Write(leads)
	if err != nil {
		runLogger.Error("PostgreSQL write failed: %v", err)
		os.Exit(1)
	}
	runLogger.Info("%d results, %d new leads saved, %d already known", found, saved, found-saved)

	if err := pgWriter.FinishSearchRun(runID, models.RunStatusDone, found, saved); err != nil {
		runLogger.Warn("Could not record run result: %v", err)
	}

	if csvOut && len(leads) > 0 {
		writeCSV(cfg.CSVOutputPath, leads, runLogger)
	}

	if cfg.SheetsSpreadsheetID != "" && len(leads) > 0 {
		mirrorToSheets(ctx, cfg, leads, runLogger)
	}

	printReport(pgWriter, logger)

	fmt.Printf("  Done. Leads stored in PostgreSQL (leads table), run %s recorded.\n\n", runID[:8])
}

func searchSocial(ctx context.Context, disc *services.Discovery,
	platform, searchType, query, notes string, logger *utils.Logger) ([]*models.Lead, error) {

	accounts, err := disc.Search(ctx, platform, searchType, query)
	if err != nil {
		return nil, err
	}
	leads := make([]*models.Lead, 0, len(accounts))
	for _, acc := range accounts {
		// TikTok accounts are only worth keeping when the bio gave up an
		// Instagram handle to reach them on.
		if platform == models.PlatformTikTok && acc.InstagramHandle == "" {
			logger.Debug("[tiktok] Skipping @%s: no Instagram handle in bio", acc.Username)
			continue
		}
		leads = append(leads, models.LeadFromAccount(acc, notes))
	}
	return leads, nil
}

func searchMaps(ctx context.Context, disc *services.Discovery,
	query string, limit int, notes string, logger *utils.Logger) ([]*models.Lead, error) {

	found, err := disc.SearchPlaces(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	leads := make([]*models.Lead, 0, len(found))
	for _, p := range found {
		if p.InstagramHandle == "" {
			logger.Debug("[maps] Skipping %s: no Instagram handle found", p.Name)
			continue
		}
		leads = append(leads, models.LeadFromPlace(p, notes))
	}
	return leads, nil
}

// runExport copies stored leads onto a new spreadsheet tab.
func runExport(ctx context.Context, cfg *config.Config, pgWriter *storage.PostgresWriter,
	query, source string, logger *utils.Logger) {

	if cfg.SheetsSpreadsheetID == "" {
		logger.Error("GOOGLE_SHEETS_SPREADSHEET_ID is not configured")
		os.Exit(1)
	}

	leads, err := pgWriter.FetchAll(leadSourceFilter(source), "")
	if err != nil {
		logger.Error("Failed to fetch leads for export: %v", err)
		os.Exit(1)
	}
	if len(leads) == 0 {
		logger.Warn("No leads to export")
		return
	}

	sheetsWriter, err := storage.NewSheetsWriter(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID)
	if err != nil {
		logger.Error("Google Sheets auth failed: %v", err)
		os.Exit(1)
	}

	tab, err := sheetsWriter.ExportToTab(leads, query, source)
	if err != nil {
		logger.Error("Sheets export failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Exported %d leads to tab %q", len(leads), tab)
}

func writeCSV(path string, leads []*models.Lead, logger *utils.Logger) {
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		return
	}
	defer csvWriter.Close()

	if _, err := csvWriter.Write(leads); err != nil {
		logger.Error("CSV write failed: %v", err)
		return
	}
	logger.Info("Leads saved to %s", path)
}

// mirrorToSheets appends new leads to the main worksheet. Best effort: a
// sheets failure is logged, never fatal to the run.
func mirrorToSheets(ctx context.Context, cfg *config.Config, leads []*models.Lead, logger *utils.Logger) {
	sheetsWriter, err := storage.NewSheetsWriter(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID)
	if err != nil {
		logger.Warn("Google Sheets auth failed, skipping mirror: %v", err)
		return
	}
	n, err := sheetsWriter.Write(leads)
	if err != nil {
		logger.Warn("Google Sheets mirror failed: %v", err)
		return
	}
	logger.Info("Mirrored %d leads to the spreadsheet", n)
}

func printReport(pgWriter *storage.PostgresWriter, logger *utils.Logger) {
	leads, err := pgWriter.FetchAll("", "")
	if err != nil {
		logger.Error("Failed to fetch leads for insights: %v", err)
		return
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(leads))
}

// leadSource maps a -source flag value to the stored source label.
func leadSource(source string) string {
	if source == "maps" {
		return models.SourceGoogleMaps
	}
	return models.SourceForPlatform(source)
}

// leadSourceFilter is leadSource for optional filters, keeping "" as "all".
func leadSourceFilter(source string) string {
	if source == "" {
		return ""
	}
	return leadSource(source)
}
