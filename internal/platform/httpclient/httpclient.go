// Package httpclient provides the HTTP client probes use to talk to remote
// services: one attempt per call, rate limiting, proxy support and status
// codes mapped onto the sentinel errors in platform/errors.
//
// Retries are the scheduler's job, so the client never retries on its own.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
)

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 4 << 20

// Client wraps http.Client with a token bucket and error mapping.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the per-request timeout. The probe context usually
	// expires first.
	// Default: 15 seconds
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Default: "falcon/1.0 (+osint)"
	UserAgent string

	// RateLimit is the maximum requests per second.
	// 0 means no rate limiting.
	RateLimit float64

	// RateLimitBurst is the burst size for rate limiting.
	// Default: 1
	RateLimitBurst int

	// ProxyURL routes every request through an HTTP(S) or SOCKS5 proxy.
	ProxyURL string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		UserAgent:      "falcon/1.0 (+osint)",
		RateLimitBurst: 1,
	}
}

// FromProbeConfig derives a client configuration from a probe section.
func FromProbeConfig(pc ports.ProbeConfig) Config {
	cfg := DefaultConfig()
	if pc.Timeout > 0 {
		cfg.Timeout = pc.Timeout
	}
	if pc.UserAgent != "" {
		cfg.UserAgent = pc.UserAgent
	}
	cfg.RateLimit = pc.RateLimit
	cfg.ProxyURL = pc.ProxyURL
	return cfg
}

// New creates a client. An unparseable proxy URL is an error.
func New(config Config, logger logx.Logger) (*Client, error) {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.RateLimitBurst <= 0 {
		config.RateLimitBurst = defaults.RateLimitBurst
	}
	if logger == nil {
		logger = logx.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.ProxyURL != "" {
		proxy, err := url.Parse(config.ProxyURL)
		if err != nil || proxy.Host == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid proxy url %q", config.ProxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimitBurst)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout, Transport: transport},
		rateLimiter: limiter,
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}, nil
}

// Request performs a single HTTP request. Transport failures come back
// wrapped in ErrConnectionFailed or ErrTimeout; the caller owns the
// response body.
func (c *Client) Request(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Wrap(ctxErr, "rate limit wait interrupted")
			}
			// Wait fails early when the deadline would pass before a token
			return nil, errors.Wrapf(errors.ErrTimeout, "rate limit wait: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "failed to create request for %s %s: %v", method, rawURL, err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Debug("HTTP request failed",
			"method", method,
			"url", rawURL,
			"error", err.Error(),
			"duration_ms", duration.Milliseconds(),
		)
		return nil, transportError(ctx, err)
	}

	c.logger.Debug("HTTP response received",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrap(ctxErr, "request interrupted")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrapf(errors.ErrTimeout, "%v", err)
	}
	return errors.Wrapf(errors.ErrConnectionFailed, "%v", err)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, rawURL, nil, headers)
}

// GetJSON is a GET with an Accept: application/json header.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return c.Get(ctx, rawURL, h)
}

// Status performs a GET and returns only the status code, discarding the
// body. Used by existence checks.
func (c *Client) Status(ctx context.Context, rawURL string, headers map[string]string) (int, error) {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
	return resp.StatusCode, nil
}

// Fetch performs a GET, validates the status and returns the body.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	return ReadBody(resp)
}

// FetchJSON performs a GET and decodes a 2xx JSON body into v. Decoding
// failures are wrapped in ErrInvalidResponse.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, headers map[string]string, v interface{}) error {
	resp, err := c.GetJSON(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return errors.Wrapf(err, "request to %s failed", rawURL)
	}
	body, err := ReadBody(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "decode %s: %v", rawURL, err)
	}
	return nil
}

// ReadBody reads at most MaxBodySize bytes and closes the body.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConnectionFailed, "failed to read response body: %v", err)
	}
	return body, nil
}

// CheckStatus validates the HTTP status code and returns an error if it's not successful.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case resp.StatusCode == http.StatusNotFound:
		return errors.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return errors.ErrUnauthorized
	case resp.StatusCode >= 500:
		return errors.Wrapf(errors.ErrServiceUnavailable, "HTTP %d", resp.StatusCode)
	default:
		return errors.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
}

// SetRateLimit updates the rate limit dynamically.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if burst <= 0 {
		burst = 1
	}
	if rps <= 0 {
		c.rateLimiter = nil
		return
	}

	if c.rateLimiter == nil {
		c.rateLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	} else {
		c.rateLimiter.SetLimit(rate.Limit(rps))
		c.rateLimiter.SetBurst(burst)
	}

	c.logger.Info("rate limit updated", "rps", rps, "burst", burst)
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, rate_limit=%.1f/s, proxy=%t}",
		c.config.Timeout,
		c.config.RateLimit,
		c.config.ProxyURL != "",
	)
}
