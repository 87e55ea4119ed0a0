package sites

import (
	"context"
	"testing"

	"wallscraper/pkg/logger"
)

const wallhavenListing = `
<html><body>
  <a class="preview" href="https://wallhaven.cc/w/abc123">thumb</a>
  <a class="preview" href="/w/def456">relative thumb</a>
  <a class="preview" href="https://wallhaven.cc/w/abc123">dup</a>
  <a href="/w/ghi789">no preview class</a>
  <a class="next" href="/search?q=anime&page=2">next</a>
</body></html>`

func TestWallHavenListingItems(t *testing.T) {
	adapter := newWallHaven(&fakeFetcher{}, logger.NewTestLogger())
	doc := parseDoc(t, wallhavenListing)

	items := adapter.ListingItems("https://wallhaven.cc/search?q=anime", doc)

	want := []string{
		"https://wallhaven.cc/w/abc123",
		"https://wallhaven.cc/w/def456",
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

func TestWallHavenResolveImage(t *testing.T) {
	detail := `<html><body>
	  <img id="wallpaper" src="https://w.wallhaven.cc/full/ab/wallhaven-abc123.jpg">
	</body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://wallhaven.cc/w/abc123": detail,
	}}
	adapter := newWallHaven(fetcher, logger.NewTestLogger())

	got, err := adapter.ResolveImage(context.Background(), "https://wallhaven.cc/w/abc123")
	if err != nil {
		t.Fatalf("ResolveImage: %v", err)
	}
	if got != "https://w.wallhaven.cc/full/ab/wallhaven-abc123.jpg" {
		t.Errorf("resolved %q", got)
	}
}

func TestWallHavenResolveImageMiss(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://wallhaven.cc/w/gone": `<html><body><p>deleted</p></body></html>`,
	}}
	adapter := newWallHaven(fetcher, logger.NewTestLogger())

	if _, err := adapter.ResolveImage(context.Background(), "https://wallhaven.cc/w/gone"); err == nil {
		t.Fatal("expected error for missing wallpaper element")
	}
}

func TestWallHavenNextPage(t *testing.T) {
	adapter := newWallHaven(&fakeFetcher{}, logger.NewTestLogger())

	doc := parseDoc(t, wallhavenListing)
	next, ok := adapter.NextPage("https://wallhaven.cc/search?q=anime", doc)
	if !ok {
		t.Fatal("expected a next page")
	}
	if next != "https://wallhaven.cc/search?q=anime&page=2" {
		t.Errorf("next = %q", next)
	}

	lastPage := parseDoc(t, `<html><body><a class="preview" href="/w/zzz999">thumb</a></body></html>`)
	if _, ok := adapter.NextPage("https://wallhaven.cc/search?q=anime&page=9", lastPage); ok {
		t.Error("expected no next page on final listing")
	}
}

func TestWallHavenSearchURLAndFolder(t *testing.T) {
	adapter := newWallHaven(&fakeFetcher{}, logger.NewTestLogger())

	searchURL := adapter.SearchURL("anime")
	if searchURL != "https://wallhaven.cc/search?q=anime" {
		t.Errorf("SearchURL = %q", searchURL)
	}
	if folder := adapter.Folder(searchURL); folder != "anime" {
		t.Errorf("Folder = %q", folder)
	}
}
