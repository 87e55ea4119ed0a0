package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/pkg/errors"
	"wallscraper/pkg/logger"
)

// wallhavenAdapter scrapes wallhaven.cc. Listing thumbnails link to
// detail pages whose img#wallpaper element carries the full image.
type wallhavenAdapter struct {
	fetcher PageFetcher
	log     logger.Logger

	nextStrategies []nextPageStrategy
}

func newWallHaven(fetcher PageFetcher, log logger.Logger) *wallhavenAdapter {
	return &wallhavenAdapter{
		fetcher: fetcher,
		log:     log.WithField("site", string(WallHaven)),
		nextStrategies: []nextPageStrategy{
			nextBySelector("a.next"),
		},
	}
}

func (a *wallhavenAdapter) Site() Site { return WallHaven }

func (a *wallhavenAdapter) SearchURL(query string) string {
	return "https://wallhaven.cc/search?q=" + url.QueryEscape(query)
}

func (a *wallhavenAdapter) ListingItems(pageURL string, doc *goquery.Document) []string {
	return collectHrefs(pageURL, doc, "a.preview", "href")
}

func (a *wallhavenAdapter) ResolveImage(ctx context.Context, item string) (string, error) {
	body, err := a.fetcher.FetchPage(ctx, item)
	if err != nil {
		return "", fmt.Errorf("fetching detail page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", errors.New(errors.ErrorTypeParsing, fmt.Sprintf("parsing detail page: %v", err), 0)
	}

	src, ok := doc.Find("img#wallpaper").First().Attr("src")
	if !ok || src == "" {
		return "", errors.New(errors.ErrorTypeNotFound, "no wallpaper image on detail page", 0)
	}
	return resolveRef(item, src), nil
}

func (a *wallhavenAdapter) NextPage(pageURL string, doc *goquery.Document) (string, bool) {
	return findNextPage(pageURL, doc, a.nextStrategies)
}

func (a *wallhavenAdapter) Folder(startURL string) string {
	return folderFromURL(startURL, "")
}
