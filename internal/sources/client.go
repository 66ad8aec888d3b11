package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
	acceptLanguage = "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7"

	defaultAttempts       = 3
	defaultBackoff        = time.Second
	defaultRequestTimeout = 15 * time.Second
)

// HTTPClient issues GET requests with browser headers and retries transport
// errors, 429 and 5xx responses with exponential backoff.
type HTTPClient struct {
	client         *http.Client
	attempts       int
	backoff        time.Duration
	requestTimeout time.Duration
}

type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithAttempts sets the total number of attempts per request.
func WithAttempts(n int) ClientOption {
	return func(h *HTTPClient) {
		if n > 0 {
			h.attempts = n
		}
	}
}

// WithBackoff sets the delay before the first retry; later retries double it.
func WithBackoff(d time.Duration) ClientOption {
	return func(h *HTTPClient) {
		if d >= 0 {
			h.backoff = d
		}
	}
}

// WithRequestTimeout bounds each attempt separately. A timed out attempt is
// retried like any other transport error, so d should leave room for the
// remaining attempts inside the caller's deadline.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(h *HTTPClient) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		client:   &http.Client{Timeout: defaultRequestTimeout},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.requestTimeout > 0 {
		c := *h.client
		c.Timeout = h.requestTimeout
		h.client = &c
	}
	return h
}

// Get fetches rawURL. The final response is returned whatever its status; the
// caller owns closing the body.
func (h *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, h.backoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if retryable(resp.StatusCode) && attempt < h.attempts-1 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("%s returned %s", rawURL, resp.Status)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request %s failed after %d attempts: %w", rawURL, h.attempts, lastErr)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
