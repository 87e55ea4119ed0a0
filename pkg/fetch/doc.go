// Package fetch provides the retry-protected HTTP layer shared by the
// site adapters and the downloader.
//
// A Client owns one http.Client (connection pool, timeout) and a fixed
// browser-like header set sent on every request. Each site adapter owns
// its own Client so sessions are never shared across sites.
//
// FetchPage retrieves a page body with bounded retries and exponential
// backoff; Get performs a single-attempt streaming request for image
// downloads, where a transient failure is an item-level failure rather
// than something worth retrying.
package fetch
