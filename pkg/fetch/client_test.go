package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wallscraper/pkg/errors"
	"wallscraper/pkg/logger"
)

const testUserAgent = "wallscraper-test/1.0"

func newTestClient(maxRetries int) (*Client, *logger.TestLogger) {
	log := logger.NewTestLogger()
	client := NewClient(5*time.Second, maxRetries, testUserAgent, "https://example.com/", log)
	return client, log
}

func TestFetchPageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>listing</body></html>"))
	}))
	defer server.Close()

	client, _ := newTestClient(3)

	body, err := client.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "listing")
}

func TestFetchPageSendsHeaders(t *testing.T) {
	var gotUserAgent, gotReferer, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotAccept = r.Header.Get("Accept-Language")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, _ := newTestClient(1)

	_, err := client.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, testUserAgent, gotUserAgent)
	assert.Equal(t, "https://example.com/", gotReferer)
	assert.Equal(t, "en-US,en;q=0.9", gotAccept)
}

func TestFetchPageRetriesThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	client, log := newTestClient(3)

	body, err := client.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "finally", body)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))

	// Each failed attempt was logged at warning level
	assert.NotEmpty(t, log.MessagesByLevel("WARN"))
}

func TestFetchPageExhaustsRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, log := newTestClient(2)

	_, err := client.FetchPage(context.Background(), server.URL)
	require.Error(t, err)

	// Exactly maxRetries attempts, no more, no fewer
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
	assert.True(t, log.HasError(), "expected exhaustion to be logged at error level")
}

func TestFetchPageRetriesNotFound(t *testing.T) {
	// The fetch layer retries any failed attempt, 404s included
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(2)

	_, err := client.FetchPage(context.Background(), server.URL)
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestGetSingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newTestClient(3)

	_, err := client.Get(server.URL)
	require.Error(t, err)

	// Get never retries, regardless of the client's retry budget
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))

	var scrapeErr *errs.Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, errs.ErrorTypeServerError, scrapeErr.Type)
	assert.Equal(t, http.StatusInternalServerError, scrapeErr.Code)
}

func TestGetStreamsBody(t *testing.T) {
	payload := []byte("fake image bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	client, _ := newTestClient(1)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestGetNetworkError(t *testing.T) {
	client, _ := newTestClient(1)

	// Closed server yields a transport-level error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := client.Get(url)
	require.Error(t, err)

	var scrapeErr *errs.Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, errs.ErrorTypeNetwork, scrapeErr.Type)
}

func TestCheckResponseStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantType errs.ErrorType
		wantErr  bool
	}{
		{200, "", false},
		{204, "", false},
		{404, errs.ErrorTypeNotFound, true},
		{429, errs.ErrorTypeRateLimit, true},
		{500, errs.ErrorTypeServerError, true},
		{502, errs.ErrorTypeServerError, true},
		{403, errs.ErrorTypeUnknown, true},
	}

	for _, test := range tests {
		resp := &http.Response{StatusCode: test.status}
		err := checkResponseStatus(resp)
		if !test.wantErr {
			assert.NoError(t, err, "status %d", test.status)
			continue
		}
		var scrapeErr *errs.Error
		require.ErrorAs(t, err, &scrapeErr, "status %d", test.status)
		assert.Equal(t, test.wantType, scrapeErr.Type, "status %d", test.status)
	}
}
