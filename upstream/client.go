package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit paces outgoing requests to r per second with the given
// burst. Zero or negative r disables pacing.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Add(key, value)
	}
}

// Client performs JSON GET requests against a base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
	userAgent string
	header    http.Header
}

// NewClient creates a Client for baseURL. Paths passed to GetJSON are
// resolved relative to it, so a base URL with a path should end in "/".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", ErrInvalidArgument, baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidArgument, baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:      base,
		timeout:   30 * time.Second,
		logger:    slog.Default(),
		userAgent: "quotewatch",
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := http.Client{Timeout: c.timeout}
	if c.http != nil {
		hc = *c.http
	}
	if c.limiter != nil {
		hc.Transport = &PacedTransport{Base: hc.Transport, Limiter: c.limiter}
	}
	c.http = &hc
	return c, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// GetJSON issues GET path?query and decodes the JSON body into out. A
// non-2xx response returns a *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%w: path %q: %v", ErrInvalidArgument, path, err)
	}
	u := c.base.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: GET %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream response",
		slog.String("host", u.Host),
		slog.String("path", u.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:   resp.StatusCode,
			Method: http.MethodGet,
			Path:   u.Path,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", u.Path, err)
	}
	return nil
}
