// Package nethttp adapts net/http to ports.HTTPClient.
package nethttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	transport       http.RoundTripper
	userAgent       string
	timeout         time.Duration
	maxBodySize     int64
	maxRedirects    int
	followRedirects bool
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		// No client timeout: deadlines come from the caller's context.
		timeout:         0,
		maxRedirects:    10,
		followRedirects: true,
		maxBodySize:     1 * 1024 * 1024, // 1MB
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize caps how much of a response body is read.
func WithMaxBodySize(size int64) Option {
	return func(c *clientConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithFollowRedirects controls whether redirects are followed.
func WithFollowRedirects(follow bool) Option {
	return func(c *clientConfig) {
		c.followRedirects = follow
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow.
func WithMaxRedirects(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithUserAgent sets the User-Agent header on requests that do not carry one.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithTransport replaces the round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// Client implements ports.HTTPClient over net/http. It never retries.
type Client struct {
	http *http.Client
	cfg  clientConfig
}

var _ ports.HTTPClient = (*Client)(nil)

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{http: newHTTPClient(cfg), cfg: cfg}
}

func newHTTPClient(cfg clientConfig) *http.Client {
	rt := cfg.transport
	if rt == nil {
		rt = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	client := &http.Client{
		Timeout:   cfg.timeout,
		Transport: rt,
	}

	if !cfg.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.maxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.maxRedirects)
			}
			return nil
		}
	}

	return client
}

// Post implements ports.HTTPClient.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) (*ports.HTTPResponse, error) {
	return c.Do(ctx, ports.HTTPRequest{
		Method:  http.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
	})
}

// Do implements ports.HTTPClient. Any response the server sends, whatever
// its status, is returned without error.
func (c *Client) Do(ctx context.Context, req ports.HTTPRequest) (*ports.HTTPResponse, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("http request: URL is required")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.cfg.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.cfg.userAgent)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return readResponse(resp, c.cfg.maxBodySize)
}

func readResponse(resp *http.Response, maxBodySize int64) (*ports.HTTPResponse, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &ports.HTTPResponse{
		Headers:    resp.Header,
		Body:       data,
		Proto:      resp.Proto,
		StatusText: statusText(resp),
		StatusCode: resp.StatusCode,
	}, nil
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
