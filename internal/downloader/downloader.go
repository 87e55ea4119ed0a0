// Package downloader saves resolved image URLs to disk one at a time.
package downloader

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"wallscraper/pkg/logger"
	"wallscraper/pkg/storage"
)

// Outcome classifies what happened to a single image
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageGetter performs a single streamed GET for an image
type ImageGetter interface {
	Get(url string) (*http.Response, error)
}

// ImageStorage persists downloaded images
type ImageStorage interface {
	IsDownloaded(filename string) bool
	SaveImage(r io.Reader, filename string) (int64, error)
	Path(filename string) string
}

// progressLogInterval is the number of bytes between progress log lines
const progressLogInterval = 256 * 1024

// progressReader counts bytes as the response body streams through it
// and logs accumulated progress. The total comes from Content-Length
// and may be unknown.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	lastLogged int64
	logger     logger.Logger
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)

	if p.read-p.lastLogged >= progressLogInterval || (err == io.EOF && p.read > p.lastLogged) {
		p.lastLogged = p.read
		fields := map[string]interface{}{
			"bytes": p.read,
		}
		if p.total > 0 {
			fields["total"] = p.total
		} else {
			fields["total"] = "unknown"
		}
		p.logger.DebugWithFields("Download progress", fields)
	}

	return n, err
}

// Result records a single download attempt
type Result struct {
	URL      string
	Filename string
	Outcome  Outcome
	Size     int64
	Duration time.Duration
	Err      error
}

// Downloader fetches images sequentially. Unlike page fetches, an
// image download gets exactly one attempt; a failed image is skipped
// rather than retried.
type Downloader struct {
	client ImageGetter
	logger logger.Logger
}

// New creates a Downloader
func New(client ImageGetter, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client: client,
		logger: log,
	}
}

// Download saves the image at imageURL into store. The filename is
// derived from the URL path. An image already on disk is skipped
// without touching the network.
func (d *Downloader) Download(imageURL string, store ImageStorage) Result {
	start := time.Now()
	result := Result{
		URL:      imageURL,
		Filename: storage.FilenameFromURL(imageURL),
	}

	if store.IsDownloaded(result.Filename) {
		d.logger.DebugWithFields("Image already downloaded, skipping", map[string]interface{}{
			"filename": result.Filename,
		})
		result.Outcome = OutcomeSkipped
		result.Duration = time.Since(start)
		return result
	}

	resp, err := d.client.Get(imageURL)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		d.logger.ErrorWithFields("Failed to download image", map[string]interface{}{
			"url":   imageURL,
			"error": err.Error(),
		})
		return result
	}
	defer resp.Body.Close()

	body := &progressReader{
		r:      resp.Body,
		total:  resp.ContentLength,
		logger: d.logger.WithField("filename", result.Filename),
	}

	size, err := store.SaveImage(body, result.Filename)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		d.logger.ErrorWithFields("Failed to save image", map[string]interface{}{
			"filename": result.Filename,
			"error":    err.Error(),
		})
		return result
	}

	if resp.ContentLength > 0 && size != resp.ContentLength {
		d.logger.WarnWithFields("Downloaded size differs from Content-Length", map[string]interface{}{
			"filename": result.Filename,
			"expected": resp.ContentLength,
			"actual":   size,
		})
	}

	result.Outcome = OutcomeSuccess
	result.Size = size
	result.Duration = time.Since(start)

	d.logger.InfoWithFields("Image downloaded", map[string]interface{}{
		"filename": result.Filename,
		"size":     size,
	})

	return result
}
