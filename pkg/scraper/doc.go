// Package scraper drives the crawl: fetch a listing page, extract
// item references, resolve and download each image, then follow
// pagination until the quota is met or the site runs out of pages.
//
// The crawl is deliberately sequential. One request is in flight at a
// time and a randomized delay separates consecutive requests, keeping
// the traffic pattern close to a person browsing.
package scraper
