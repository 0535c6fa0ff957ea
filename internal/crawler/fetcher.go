package crawler

import (
	"context"
	"io"
	"net/http"

	"github.com/linkpatrol/linkpatrol/internal/model"
	"github.com/linkpatrol/linkpatrol/internal/useragent"
)

// DefaultMaxBodySize caps how much of a response body the fetcher reads.
// 5MB is sufficient for any HTML page while preventing memory exhaustion
// from unexpectedly large responses.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Fetcher performs single page retrievals and classifies their outcome.
// An HTTP response with any status code, 4xx and 5xx included, is a
// responded outcome; only transport-level failures that yield no response
// at all become the ERROR variant.
//
// Design decision: We require an external *http.Client because:
//  1. The per-fetch timeout lives on the client, configured once by the caller
//  2. Consistent with how the other components receive collaborators
//  3. Allows httptest clients in tests
type Fetcher struct {
	// client is the HTTP client carrying the per-fetch timeout.
	client *http.Client

	// agents selects the User-Agent header for each request.
	agents *useragent.Rotator

	// headers are extra request headers from site configuration.
	headers map[string]string

	// cookie is an optional Cookie header value from site configuration.
	cookie string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgents sets the User-Agent rotator.
func WithUserAgents(r *useragent.Rotator) FetcherOption {
	return func(f *Fetcher) {
		if r != nil {
			f.agents = r
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		agents:      useragent.NewRotator(),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET request for the work item and classifies the
// result. It never returns an error: every possible result maps onto
// the Outcome variant, and the crawl continues regardless.
func (f *Fetcher) Fetch(ctx context.Context, item model.WorkItem) model.Outcome {
	outcome := model.Outcome{
		Target:   item.Target,
		Referrer: item.Referrer,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.Target, nil)
	if err != nil {
		return outcome
	}

	req.Header.Set("User-Agent", f.agents.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// No response obtained: timeout, DNS failure, connection refused.
		return outcome
	}
	defer resp.Body.Close()

	outcome.Responded = true
	outcome.StatusCode = resp.StatusCode

	// A body read failure after the status line still counts as a
	// response; extraction simply sees whatever arrived.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	outcome.Body = body

	return outcome
}
