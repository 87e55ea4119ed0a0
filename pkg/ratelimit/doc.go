// Package ratelimit provides the polite-delay machinery between requests
// against a wallpaper site.
//
// Two limiters are provided:
//
//   - RandomDelay blocks for a duration drawn uniformly from a configured
//     range. The crawl loop invokes it between consecutive network
//     operations so the request cadence never looks mechanical.
//   - TokenBucket caps the overall number of requests per refill period.
//     The fetch client consults it when a requests-per-minute limit is
//     configured.
//
// Both are simple blocking limiters; the scraper runs single-threaded,
// so a Wait is always a plain sleep on the calling goroutine.
package ratelimit
