package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gamedex/catalog-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration // initial backoff between retries; 0 means 500ms
	RateLimiters map[string]*rate.Limiter
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 1.2
	if newRate > a.maxRate {
		newRate = a.maxRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 0.5
	if newRate < a.minRate {
		newRate = a.minRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(newRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client           *http.Client
	opts             HTTPOptions
	limiters         map[string]*rate.Limiter
	adaptiveLimiters map[string]*AdaptiveLimiter
	breakers         *resilience.ServiceBreakers
}

// DefaultRateLimiters returns the default per-host rate limiters. IGDB
// documents 4 req/s per client; the HLTB and OpenCritic endpoints are
// unofficial and are polled conservatively.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"api.igdb.com":      rate.NewLimiter(4, 4),
		"id.twitch.tv":      rate.NewLimiter(1, 1),
		"howlongtobeat.com": rate.NewLimiter(2, 2),
		"opencritic.com":    rate.NewLimiter(2, 2),
		"api.rawg.io":       rate.NewLimiter(5, 5),
	}
}

// DefaultAdaptiveLimiters returns adaptive rate limiters for the hosts
// known to throttle bursty clients.
func DefaultAdaptiveLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		"api.igdb.com":      NewAdaptiveLimiter(4, 4),
		"howlongtobeat.com": NewAdaptiveLimiter(2, 2),
		"api.rawg.io":       NewAdaptiveLimiter(5, 5),
	}
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "catalog-cli/1.0"
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:             opts,
		limiters:         limiters,
		adaptiveLimiters: DefaultAdaptiveLimiters(),
		breakers:         resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig()),
	}
}

// adaptiveLimiterFor returns the adaptive limiter for the given host, if any.
func (f *HTTPFetcher) adaptiveLimiterFor(rawURL string) *AdaptiveLimiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return f.adaptiveLimiters[u.Host]
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(20, 20)
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(20, 20)
}

// Do sends req with retry, backoff and rate limiting applied.
func (f *HTTPFetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f.doWithRetry(ctx, req)
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	adaptive := f.adaptiveLimiterFor(req.URL.String())
	cb := f.breakers.Get(req.URL.Host)

	var body []byte
	if req.Body != nil {
		// Buffer the body so each attempt can replay it.
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "buffer request body")
		}
		body = b
	}

	cfg := resilience.RetryConfig{
		MaxAttempts:    f.opts.MaxRetries,
		InitialBackoff: f.opts.RetryBackoff,
		OnRetry: func(attempt int, err error) {
			var te *resilience.TransientError
			if errors.As(err, &te) && te.StatusCode == http.StatusTooManyRequests && adaptive != nil {
				adaptive.OnRateLimit()
			}
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		},
	}

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*http.Response, error) {
		// Use adaptive limiter if available, otherwise fall back to fixed.
		if adaptive != nil {
			if err := adaptive.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "rate limiter wait")
			}
		} else if err := f.limiterFor(req.URL.String()).Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		return resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (*http.Response, error) {
			cloned := req.Clone(ctx)
			if body != nil {
				cloned.Body = io.NopCloser(bytes.NewReader(body))
			}
			resp, err := f.client.Do(cloned)
			if err != nil {
				return nil, err
			}
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				status := resp.StatusCode
				_ = resp.Body.Close()
				return nil, resilience.NewTransientError(
					eris.Errorf("http %d from %s", status, req.URL.String()), status)
			}
			return resp, nil
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "request %s", req.URL.String())
	}

	// Success: increase adaptive rate.
	if adaptive != nil {
		adaptive.OnSuccess()
	}
	return resp, nil
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return resp.Body, nil
}

// GetJSON performs a GET and decodes the JSON response into v.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	f.setHeaders(req, headers)
	return f.doJSON(ctx, req, v)
}

// PostJSON performs a POST with the given body and decodes the JSON
// response into v.
func (f *HTTPFetcher) PostJSON(ctx context.Context, rawURL string, headers map[string]string, body []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	f.setHeaders(req, headers)
	return f.doJSON(ctx, req, v)
}

func (f *HTTPFetcher) setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func (f *HTTPFetcher) doJSON(ctx context.Context, req *http.Request, v any) error {
	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.String())
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return eris.Wrapf(err, "decode response from %s", req.URL.String())
	}
	return nil
}
