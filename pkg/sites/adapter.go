package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/pkg/logger"
	"wallscraper/pkg/storage"
)

// Site identifies a supported gallery site
type Site string

const (
	WallHere     Site = "wallhere"
	WallHaven    Site = "wallhaven"
	WallpaperCat Site = "wallpapercat"
)

// All returns every supported site
func All() []Site {
	return []Site{WallHere, WallHaven, WallpaperCat}
}

// ParseSite converts a user-supplied name to a Site
func ParseSite(name string) (Site, error) {
	parsed := Site(strings.ToLower(strings.TrimSpace(name)))
	for _, site := range All() {
		if parsed == site {
			return site, nil
		}
	}

	supported := make([]string, 0, len(All()))
	for _, site := range All() {
		supported = append(supported, string(site))
	}
	return "", fmt.Errorf("unknown site %q (supported: %s)", name, strings.Join(supported, ", "))
}

// PageFetcher fetches a page body; implemented by the fetch client
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Adapter is the per-site scraping contract
type Adapter interface {
	// Site returns the site this adapter scrapes
	Site() Site

	// SearchURL builds a listing URL from a bare query term
	SearchURL(query string) string

	// ListingItems extracts candidate item references from a listing
	// page in document order, deduplicated within the page. Relative
	// hrefs are resolved against pageURL.
	ListingItems(pageURL string, doc *goquery.Document) []string

	// ResolveImage resolves an item reference to a full-resolution
	// image URL. A resolution miss returns an error; the caller skips
	// the item and moves on.
	ResolveImage(ctx context.Context, item string) (string, error)

	// NextPage finds the following listing page, if any
	NextPage(pageURL string, doc *goquery.Document) (string, bool)

	// Folder names the destination folder for a crawl starting at
	// startURL, derived from its query term or path slug
	Folder(startURL string) string
}

// New constructs the adapter for a site. The fetcher is the adapter's
// own; detail-page fetches never share another site's HTTP session.
func New(site Site, fetcher PageFetcher, log logger.Logger) (Adapter, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	switch site {
	case WallHere:
		return newWallHere(fetcher, log), nil
	case WallHaven:
		return newWallHaven(fetcher, log), nil
	case WallpaperCat:
		return newWallpaperCat(log), nil
	default:
		return nil, fmt.Errorf("unknown site %q", site)
	}
}

// BaseURLOf returns the canonical base URL for a site, used as the
// Referer on that site's requests
func BaseURLOf(site Site) string {
	switch site {
	case WallHere:
		return "https://wallhere.com/"
	case WallHaven:
		return "https://wallhaven.cc/"
	case WallpaperCat:
		return "https://wallpapercat.com/"
	default:
		return ""
	}
}

// resolveRef resolves a possibly relative href against the page it was
// found on
func resolveRef(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// folderFromURL derives a folder name from a listing URL: the q query
// term when present, otherwise the last path segment. An empty result
// falls back to "wallpapers".
func folderFromURL(startURL, stripSuffix string) string {
	u, err := url.Parse(startURL)
	if err != nil {
		return "wallpapers"
	}

	if q := u.Query().Get("q"); q != "" {
		if name := storage.SanitizeFolderName(q); name != "" {
			return name
		}
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	name := segments[len(segments)-1]
	if stripSuffix != "" {
		name = strings.TrimSuffix(name, stripSuffix)
	}
	if name = storage.SanitizeFolderName(name); name == "" {
		return "wallpapers"
	}
	return name
}
