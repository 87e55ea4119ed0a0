package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/internal/downloader"
	"wallscraper/pkg/config"
	"wallscraper/pkg/fetch"
	"wallscraper/pkg/logger"
	"wallscraper/pkg/ratelimit"
	"wallscraper/pkg/sites"
	"wallscraper/pkg/storage"
)

// crawlState names the phase the crawl loop is in, for logging
type crawlState string

const (
	stateFetching    crawlState = "fetching"
	stateExtracting  crawlState = "extracting"
	stateDownloading crawlState = "downloading"
	statePaginating  crawlState = "paginating"
)

// Target describes one crawl: where to start and how many images to
// collect. Quota counts both fresh downloads and images already on
// disk, so re-running a finished crawl ends quickly.
type Target struct {
	StartURL string
	Quota    int
}

// Summary reports what a crawl accomplished
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
	Pages      int
}

// Collected returns the number of images counted against the quota
func (s *Summary) Collected() int {
	return s.Downloaded + s.Skipped
}

// Scraper orchestrates a sequential crawl of one site
type Scraper struct {
	adapter    sites.Adapter
	client     *fetch.Client
	downloader *downloader.Downloader
	limiter    ratelimit.Limiter
	config     *config.Config
	logger     logger.Logger
}

// New creates a Scraper for the given site
func New(cfg *config.Config, site sites.Site) (*Scraper, error) {
	log := logger.GetLogger()

	client := fetch.NewClient(
		cfg.HTTP.Timeout,
		cfg.HTTP.MaxRetries,
		cfg.HTTP.UserAgent,
		sites.BaseURLOf(site),
		log,
	)

	// Optional cadence cap on top of the per-item delays
	if cfg.RateLimit.RequestsPerMinute > 0 {
		client.SetLimiter(ratelimit.NewTokenBucket(
			cfg.RateLimit.RequestsPerMinute,
			time.Minute,
		))
	}

	adapter, err := sites.New(site, client, log)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		adapter:    adapter,
		client:     client,
		downloader: downloader.New(client, log),
		limiter:    ratelimit.NewRandomDelay(cfg.RateLimit.MinDelay, cfg.RateLimit.MaxDelay),
		config:     cfg,
		logger:     log.WithField("site", string(site)),
	}, nil
}

// SearchURL expands a bare query term into the site's listing URL
func (s *Scraper) SearchURL(query string) string {
	return s.adapter.SearchURL(query)
}

// setLimiter swaps the per-item delay, used by tests to avoid sleeping
func (s *Scraper) setLimiter(limiter ratelimit.Limiter) {
	s.limiter = limiter
}

// Run executes the crawl. It always returns a Summary, even when the
// crawl ends on an error or an unexpected panic, so the caller can
// report what was collected before things went wrong.
func (s *Scraper) Run(ctx context.Context, target Target) (summary *Summary, err error) {
	summary = &Summary{}

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorWithFields("Crawl aborted by unexpected error", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	if target.Quota <= 0 {
		s.logger.InfoWithFields("Nothing to collect", map[string]interface{}{
			"quota": target.Quota,
		})
		return summary, nil
	}

	folder := s.adapter.Folder(target.StartURL)
	outputDir := filepath.Join(s.config.Output.BaseDirectory, string(s.adapter.Site()), folder)

	store, err := storage.NewManager(outputDir)
	if err != nil {
		return summary, fmt.Errorf("preparing output directory: %w", err)
	}

	s.logger.InfoWithFields("Starting crawl", map[string]interface{}{
		"start_url":  target.StartURL,
		"quota":      target.Quota,
		"output_dir": outputDir,
	})

	s.limiter.Reset()

	pageURL := target.StartURL
	for {
		s.logState(stateFetching, pageURL)
		body, err := s.client.FetchPage(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			// Retries are exhausted at this point. The crawl ends here
			// with whatever was collected so far rather than failing the
			// whole run.
			s.logger.WithError(err).WithField("url", pageURL).Error("Giving up on listing page, ending crawl")
			return summary, nil
		}
		summary.Pages++

		s.logState(stateExtracting, pageURL)
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return summary, fmt.Errorf("parsing listing page: %w", err)
		}

		items := s.adapter.ListingItems(pageURL, doc)
		if len(items) == 0 {
			s.logger.InfoWithFields("No items on page, stopping", map[string]interface{}{
				"url": pageURL,
			})
			return summary, nil
		}

		s.logger.InfoWithFields("Listing page extracted", map[string]interface{}{
			"url":   pageURL,
			"items": len(items),
			"page":  summary.Pages,
		})

		s.logState(stateDownloading, pageURL)
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			s.processItem(ctx, item, store, summary)

			if summary.Collected() >= target.Quota {
				s.logger.InfoWithFields("Quota reached", map[string]interface{}{
					"collected": summary.Collected(),
					"quota":     target.Quota,
				})
				return summary, nil
			}
		}

		s.logState(statePaginating, pageURL)
		next, ok := s.adapter.NextPage(pageURL, doc)
		if !ok {
			s.logger.Info("No further pages")
			return summary, nil
		}
		pageURL = next
	}
}

// processItem resolves one listing item and downloads its image. Item
// failures are recorded and the crawl moves on.
func (s *Scraper) processItem(ctx context.Context, item string, store *storage.Manager, summary *Summary) {
	s.limiter.Wait()

	imageURL, err := s.adapter.ResolveImage(ctx, item)
	if err != nil {
		summary.Failed++
		s.logger.WithError(err).WithField("item", item).Warn("Could not resolve image, skipping item")
		return
	}

	s.limiter.Wait()

	result := s.downloader.Download(imageURL, store)
	switch result.Outcome {
	case downloader.OutcomeSuccess:
		summary.Downloaded++
	case downloader.OutcomeSkipped:
		summary.Skipped++
	default:
		summary.Failed++
	}
}

func (s *Scraper) logState(state crawlState, pageURL string) {
	s.logger.DebugWithFields("Crawl state", map[string]interface{}{
		"state": string(state),
		"url":   pageURL,
	})
}
