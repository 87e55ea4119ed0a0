package sites

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/pkg/logger"
)

// wallpapercatAdapter scrapes wallpapercat.com. Listing tiles carry
// the full image URL in a data attribute, so items resolve to
// themselves without a detail-page fetch.
type wallpapercatAdapter struct {
	log logger.Logger

	nextStrategies []nextPageStrategy
}

func newWallpaperCat(log logger.Logger) *wallpapercatAdapter {
	return &wallpapercatAdapter{
		log: log.WithField("site", string(WallpaperCat)),
		nextStrategies: []nextPageStrategy{
			nextByText(regexp.MustCompile(`(?i)^(next|»)$`)),
			nextBySelector(`a[rel="next"]`),
		},
	}
}

func (a *wallpapercatAdapter) Site() Site { return WallpaperCat }

func (a *wallpapercatAdapter) SearchURL(query string) string {
	slug := strings.ToLower(strings.TrimSpace(query))
	slug = strings.Join(strings.Fields(slug), "-")
	return "https://wallpapercat.com/" + url.PathEscape(slug) + "-wallpapers"
}

func (a *wallpapercatAdapter) ListingItems(pageURL string, doc *goquery.Document) []string {
	return collectHrefs(pageURL, doc, "div[data-fullimg]", "data-fullimg")
}

// ResolveImage is the identity: items already are image URLs
func (a *wallpapercatAdapter) ResolveImage(_ context.Context, item string) (string, error) {
	return item, nil
}

func (a *wallpapercatAdapter) NextPage(pageURL string, doc *goquery.Document) (string, bool) {
	return findNextPage(pageURL, doc, a.nextStrategies)
}

func (a *wallpapercatAdapter) Folder(startURL string) string {
	return folderFromURL(startURL, "-wallpapers")
}
