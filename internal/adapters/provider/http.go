// Package provider holds the HTTP clients for the upstream routing
// providers. Each client translates wire-level failures into the typed
// domain taxonomy and applies the bounded transient-retry policy; callers
// above this layer never retry.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"travel-time-service/internal/domain"

	"golang.org/x/time/rate"
)

// RetryConfig bounds the transient-failure retry applied by both clients:
// one extra attempt after a fixed short delay. Permanent failures are never
// retried.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       300 * time.Millisecond,
	}
}

// httpClient is the transport shared by both provider clients: an
// http.Client with a provider-appropriate timeout, an optional outbound
// pacer, and the retry loop.
type httpClient struct {
	session *http.Client
	pacer   *rate.Limiter
	retry   RetryConfig
}

func newHTTPClient(timeout time.Duration, pacer *rate.Limiter, retry RetryConfig) httpClient {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return httpClient{
		session: &http.Client{Timeout: timeout},
		pacer:   pacer,
		retry:   retry,
	}
}

func (c *httpClient) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do performs one paced round trip. Network-level failures (including
// timeouts) are transient; the caller classifies status codes.
func (c *httpClient) do(req *http.Request, providerKey string) (*http.Response, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("pace request: %w", err)
		}
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, &domain.EstimateError{
			Kind:     domain.KindTransient,
			Provider: providerKey,
			Message:  "request failed",
			Err:      err,
		}
	}
	return resp, nil
}

// withRetry runs attempt, retrying once after a fixed delay when the failure
// is transient. Typed permanent failures propagate immediately.
func (c *httpClient) withRetry(ctx context.Context, attempt func(ctx context.Context) error) error {
	var lastErr error

	for i := 1; i <= c.retry.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := attempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !domain.IsTransient(err) || i == c.retry.MaxAttempts {
			return lastErr
		}

		timer := time.NewTimer(c.retry.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
