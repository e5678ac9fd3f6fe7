// Package fetcher is the shared HTTP transport for the four external
// game-data sources: retries with capped exponential backoff, per-host
// rate limiting, and JSON decode helpers. Exhausted retries surface as
// errors; callers treat them as a miss for the single lookup, never as
// a fatal condition for the run.
package fetcher

import (
	"context"
	"io"
	"net/http"
)

// Fetcher defines the transport interface the source clients consume.
type Fetcher interface {
	// Download performs a GET and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// Do sends an arbitrary request with retry and rate limiting and
	// returns the raw response. The caller owns the body.
	Do(ctx context.Context, req *http.Request) (*http.Response, error)

	// GetJSON performs a GET and decodes the JSON response into v.
	GetJSON(ctx context.Context, url string, headers map[string]string, v any) error

	// PostJSON performs a POST with the given body and decodes the
	// JSON response into v.
	PostJSON(ctx context.Context, url string, headers map[string]string, body []byte, v any) error
}
