package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wallscraper/pkg/config"
	"wallscraper/pkg/logger"
	"wallscraper/pkg/scraper"
	"wallscraper/pkg/sites"
)

var (
	// Scrape command flags
	limit      int
	outputDir  string
	minDelay   time.Duration
	maxDelay   time.Duration
	maxRetries int
	timeout    time.Duration
	rateLimit  int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <site> <query or listing URL>",
	Short: "Download wallpapers matching a search query",
	Long: `Download wallpapers from a supported site.

The second argument is either a search query, which is expanded to the
site's search URL, or a full listing URL to start crawling from.

Supported sites: wallhere, wallhaven, wallpapercat.

The crawl is sequential and pauses a few seconds between requests. Images
already present in the destination folder are skipped and still count
toward the requested number, so interrupted runs can simply be repeated.`,
	Example: `  # Download 20 forest wallpapers from wallhere
  wallscraper scrape wallhere forest

  # Download 50 anime wallpapers from wallhaven into a custom directory
  wallscraper scrape wallhaven anime --limit 50 --output ~/wallpapers

  # Start from an explicit listing URL
  wallscraper scrape wallhaven "https://wallhaven.cc/search?q=mountains&page=3"

  # Crawl more gently
  wallscraper scrape wallpapercat cats --min-delay 5s --max-delay 10s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of wallpapers to collect")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for downloads (default: ./downloads)")
	scrapeCmd.Flags().DurationVar(&minDelay, "min-delay", 0, "minimum pause between requests")
	scrapeCmd.Flags().DurationVar(&maxDelay, "max-delay", 0, "maximum pause between requests")
	scrapeCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "page fetch attempts before giving up")
	scrapeCmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP request timeout")
	scrapeCmd.Flags().IntVar(&rateLimit, "requests-per-minute", 0, "cap on overall request cadence (0 = uncapped)")
}

func runScrape(cmd *cobra.Command, args []string) {
	site, err := sites.ParseSite(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	query := strings.TrimSpace(args[1])
	if query == "" {
		fmt.Fprintln(os.Stderr, "query must not be empty")
		os.Exit(1)
	}

	if limit < 1 {
		fmt.Fprintln(os.Stderr, "--limit must be at least 1")
		os.Exit(1)
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if maxRetries > 0 {
		flags["max-retries"] = maxRetries
	}
	if timeout > 0 {
		flags["timeout"] = timeout
	}
	if cmd.Flags().Changed("min-delay") {
		flags["min-delay"] = minDelay
	}
	if cmd.Flags().Changed("max-delay") {
		flags["max-delay"] = maxDelay
	}
	if rateLimit > 0 {
		flags["requests-per-minute"] = rateLimit
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.WithField("version", version).Info("Wallscraper starting")

	s, err := scraper.New(cfg, site)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize scraper: %v\n", err)
		os.Exit(1)
	}

	startURL := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		startURL = s.SearchURL(query)
	}

	summary, err := s.Run(context.Background(), scraper.Target{
		StartURL: startURL,
		Quota:    limit,
	})

	// The summary is reported even when the crawl ends early
	fmt.Printf("\nDownloaded %d wallpapers (%d already present, %d failed) across %d pages\n",
		summary.Downloaded, summary.Skipped, summary.Failed, summary.Pages)

	if err != nil {
		logger.GetLogger().WithError(err).Error("Crawl ended with an error")
		fmt.Fprintf(os.Stderr, "Crawl failed: %v\n", err)
		os.Exit(1)
	}

	logger.GetLogger().InfoWithFields("Crawl completed", map[string]interface{}{
		"site":       string(site),
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	})
}
