package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/pkg/errors"
	"wallscraper/pkg/logger"
)

// wallhereAdapter scrapes wallhere.com. Listing pages link to detail
// pages; the full image URL comes from the detail page's photo anchor
// or, failing that, its JSON-LD metadata.
type wallhereAdapter struct {
	fetcher PageFetcher
	log     logger.Logger

	nextStrategies []nextPageStrategy
}

var wallhereDetailPattern = regexp.MustCompile(`/en/wallpaper/\d+`)

func newWallHere(fetcher PageFetcher, log logger.Logger) *wallhereAdapter {
	return &wallhereAdapter{
		fetcher: fetcher,
		log:     log.WithField("site", string(WallHere)),
		nextStrategies: []nextPageStrategy{
			nextByText(regexp.MustCompile(`^»$`)),
			nextBySelector("a.next_page"),
		},
	}
}

func (a *wallhereAdapter) Site() Site { return WallHere }

func (a *wallhereAdapter) SearchURL(query string) string {
	return "https://wallhere.com/en/wallpapers?q=" + url.QueryEscape(query)
}

func (a *wallhereAdapter) ListingItems(pageURL string, doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var items []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !wallhereDetailPattern.MatchString(href) {
			return
		}
		resolved := resolveRef(pageURL, href)
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		items = append(items, resolved)
	})
	return items
}

func (a *wallhereAdapter) ResolveImage(ctx context.Context, item string) (string, error) {
	body, err := a.fetcher.FetchPage(ctx, item)
	if err != nil {
		return "", fmt.Errorf("fetching detail page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", errors.New(errors.ErrorTypeParsing, fmt.Sprintf("parsing detail page: %v", err), 0)
	}

	if href, ok := doc.Find("a.current-page-photo").First().Attr("href"); ok && href != "" {
		return resolveRef(item, href), nil
	}

	if imageURL, ok := contentURLFromJSONLD(doc); ok {
		a.log.Debug("resolved image from structured data")
		return resolveRef(item, imageURL), nil
	}

	return "", errors.New(errors.ErrorTypeNotFound, "no full image link on detail page", 0)
}

// contentURLFromJSONLD scans ld+json script blocks for an ImageObject
// contentUrl
func contentURLFromJSONLD(doc *goquery.Document) (string, bool) {
	var imageURL string
	var found bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if u, ok := data["contentUrl"].(string); ok && u != "" {
			imageURL = u
			found = true
			return false
		}
		return true
	})
	return imageURL, found
}

func (a *wallhereAdapter) NextPage(pageURL string, doc *goquery.Document) (string, bool) {
	return findNextPage(pageURL, doc, a.nextStrategies)
}

func (a *wallhereAdapter) Folder(startURL string) string {
	return folderFromURL(startURL, "")
}
