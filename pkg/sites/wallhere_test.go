package sites

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"wallscraper/pkg/logger"
)

// fakeFetcher serves canned page bodies keyed by URL
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
	err     error
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return "", f.err
	}
	body, ok := f.pages[url]
	if !ok {
		return "", context.DeadlineExceeded
	}
	return body, nil
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

const wallhereListing = `
<html><body>
  <a href="/en/wallpaper/12345">first</a>
  <a href="/en/wallpaper/67890">second</a>
  <a href="/en/wallpaper/12345">duplicate of first</a>
  <a href="/en/about">not a wallpaper</a>
  <a href="https://wallhere.com/en/wallpaper/11111">absolute</a>
  <a class="next_page" href="/en/wallpapers?q=forest&page=2">next</a>
</body></html>`

func TestWallHereListingItems(t *testing.T) {
	adapter := newWallHere(&fakeFetcher{}, logger.NewTestLogger())
	doc := parseDoc(t, wallhereListing)

	items := adapter.ListingItems("https://wallhere.com/en/wallpapers?q=forest", doc)

	want := []string{
		"https://wallhere.com/en/wallpaper/12345",
		"https://wallhere.com/en/wallpaper/67890",
		"https://wallhere.com/en/wallpaper/11111",
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %v", len(items), len(want), items)
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("item %d = %q, want %q", i, items[i], w)
		}
	}
}

func TestWallHereResolveImageAnchor(t *testing.T) {
	detail := `<html><body>
	  <a class="current-page-photo" href="https://get.wallhere.com/photo/forest-12345.jpg">download</a>
	</body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://wallhere.com/en/wallpaper/12345": detail,
	}}
	adapter := newWallHere(fetcher, logger.NewTestLogger())

	got, err := adapter.ResolveImage(context.Background(), "https://wallhere.com/en/wallpaper/12345")
	if err != nil {
		t.Fatalf("ResolveImage: %v", err)
	}
	if got != "https://get.wallhere.com/photo/forest-12345.jpg" {
		t.Errorf("resolved %q", got)
	}
}

func TestWallHereResolveImageJSONLDFallback(t *testing.T) {
	detail := `<html><head>
	  <script type="application/ld+json">{"@type":"ImageObject","contentUrl":"https://get.wallhere.com/photo/forest-67890.png"}</script>
	</head><body></body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://wallhere.com/en/wallpaper/67890": detail,
	}}
	adapter := newWallHere(fetcher, logger.NewTestLogger())

	got, err := adapter.ResolveImage(context.Background(), "https://wallhere.com/en/wallpaper/67890")
	if err != nil {
		t.Fatalf("ResolveImage: %v", err)
	}
	if got != "https://get.wallhere.com/photo/forest-67890.png" {
		t.Errorf("resolved %q", got)
	}
}

func TestWallHereResolveImageMiss(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://wallhere.com/en/wallpaper/404": `<html><body><p>nothing here</p></body></html>`,
	}}
	adapter := newWallHere(fetcher, logger.NewTestLogger())

	_, err := adapter.ResolveImage(context.Background(), "https://wallhere.com/en/wallpaper/404")
	if err == nil {
		t.Fatal("expected error when detail page has no image link")
	}
}

func TestWallHereNextPage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			name: "guillemet anchor preferred",
			html: `<a href="/en/wallpapers?q=forest&page=2">»</a><a class="next_page" href="/wrong">n</a>`,
			want: "https://wallhere.com/en/wallpapers?q=forest&page=2",
			ok:   true,
		},
		{
			name: "class fallback",
			html: `<a class="next_page" href="/en/wallpapers?q=forest&page=3">older</a>`,
			want: "https://wallhere.com/en/wallpapers?q=forest&page=3",
			ok:   true,
		},
		{
			name: "no pagination",
			html: `<a href="/en/wallpaper/1">just an item</a>`,
			ok:   false,
		},
	}

	adapter := newWallHere(&fakeFetcher{}, logger.NewTestLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "<html><body>"+tt.html+"</body></html>")
			got, ok := adapter.NextPage("https://wallhere.com/en/wallpapers?q=forest", doc)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWallHereSearchURLAndFolder(t *testing.T) {
	adapter := newWallHere(&fakeFetcher{}, logger.NewTestLogger())

	searchURL := adapter.SearchURL("misty forest")
	if searchURL != "https://wallhere.com/en/wallpapers?q=misty+forest" {
		t.Errorf("SearchURL = %q", searchURL)
	}
	if folder := adapter.Folder(searchURL); folder != "misty forest" {
		t.Errorf("Folder = %q", folder)
	}
	if folder := adapter.Folder("https://wallhere.com/en/wallpapers"); folder != "wallpapers" {
		t.Errorf("Folder without query = %q", folder)
	}
}
