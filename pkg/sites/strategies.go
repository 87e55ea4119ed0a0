package sites

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nextPageStrategy locates a pagination link in a listing document.
// Strategies run in order; the first hit wins.
type nextPageStrategy func(doc *goquery.Document) (string, bool)

// nextByText matches anchors whose visible text matches pattern
func nextByText(pattern *regexp.Regexp) nextPageStrategy {
	return func(doc *goquery.Document) (string, bool) {
		var href string
		var found bool
		doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if !pattern.MatchString(text) {
				return true
			}
			if h, ok := s.Attr("href"); ok && h != "" {
				href = h
				found = true
				return false
			}
			return true
		})
		return href, found
	}
}

// nextBySelector matches the first anchor satisfying a CSS selector
func nextBySelector(selector string) nextPageStrategy {
	return func(doc *goquery.Document) (string, bool) {
		s := doc.Find(selector).First()
		if s.Length() == 0 {
			return "", false
		}
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return "", false
		}
		return href, true
	}
}

// findNextPage runs the strategies in order and resolves the winning
// href against pageURL
func findNextPage(pageURL string, doc *goquery.Document, strategies []nextPageStrategy) (string, bool) {
	for _, strategy := range strategies {
		if href, ok := strategy(doc); ok {
			return resolveRef(pageURL, href), true
		}
	}
	return "", false
}

// collectHrefs gathers attribute values from selector matches in
// document order, deduplicated, resolved against pageURL
func collectHrefs(pageURL string, doc *goquery.Document, selector, attr string) []string {
	seen := make(map[string]struct{})
	var items []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		val, ok := s.Attr(attr)
		if !ok || val == "" {
			return
		}
		resolved := resolveRef(pageURL, val)
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		items = append(items, resolved)
	})
	return items
}
