package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "wallscraper/pkg/errors"
	"wallscraper/pkg/logger"
	"wallscraper/pkg/ratelimit"
	"wallscraper/pkg/retry"
)

// Client performs HTTP GETs against one wallpaper site with a fixed
// browser-like header set
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	maxRetries int
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a fetch client. The referer should point at the site
// the client is dedicated to; maxRetries bounds the attempts FetchPage
// makes before giving up.
func NewClient(timeout time.Duration, maxRetries int, userAgent, referer string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         referer,
		},
		maxRetries: maxRetries,
		logger:     log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetLimiter installs a request-cadence cap consulted before every
// request this client makes
func (c *Client) SetLimiter(limiter ratelimit.Limiter) {
	c.limiter = limiter
}

// SetTransport replaces the underlying HTTP transport (used by tests)
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if c.limiter != nil {
		c.limiter.Wait()
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("network error: %v", err), 0)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a single-attempt GET. On a 2xx status the response is
// returned with its body open for streaming; on any other status the body
// is closed and a typed error returned.
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err), 0)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// FetchPage fetches a page body with bounded retries and exponential
// backoff. Every failed attempt is logged at warn by the retry machinery
// and exhaustion at error; callers receive an error and decide whether
// that ends the crawl or just the current item.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	body, err := retry.DoWithResult(func() (string, error) {
		return c.fetchOnce(url)
	}, &retry.Config{
		MaxAttempts: c.maxRetries,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    time.Second,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		// Retry every fetch failure, 404s included; these sites serve
		// transient error pages often enough that blanket retry wins
		// over status classification here.
		RetryIf: func(err error) bool { return err != nil },
		Context: ctx,
		Logger:  c.logger,
	})
	if err != nil {
		c.logger.ErrorWithFields("failed to fetch page", map[string]interface{}{
			"url":          url,
			"max_attempts": c.maxRetries,
			"error":        err.Error(),
		})
		return "", err
	}

	return body, nil
}

// fetchOnce performs one GET attempt and reads the whole body
func (c *Client) fetchOnce(url string) (string, error) {
	resp, err := c.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode)
	}

	return string(body), nil
}

// checkResponseStatus maps an HTTP response status to a typed error
func checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errs.New(errs.ErrorTypeNotFound, "resource not found", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.New(errs.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	case resp.StatusCode >= 500:
		return errs.New(errs.ErrorTypeServerError, fmt.Sprintf("server returned status %d", resp.StatusCode), resp.StatusCode)
	default:
		return errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
	}
}
