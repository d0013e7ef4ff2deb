package ports

import (
	"context"
)

// HTTPClient defines the interface for HTTP operations.
// Infrastructure adapters implement this to provide HTTP functionality.
// Implementations must not retry on their own.
type HTTPClient interface {
	// Do executes an HTTP request and returns the response.
	// A non-nil error means no response was received at all.
	Do(ctx context.Context, req HTTPRequest) (*HTTPResponse, error)

	// Post performs an HTTP POST request.
	Post(ctx context.Context, url string, contentType string, body []byte) (*HTTPResponse, error)
}

// HTTPRequest represents an HTTP request.
type HTTPRequest struct {
	Headers map[string]string
	Method  string
	URL     string
	Body    []byte
}

// HTTPResponse represents an HTTP response.
type HTTPResponse struct {
	Headers    map[string][]string
	Body       []byte
	Proto      string // e.g. "HTTP/1.1"
	StatusText string // e.g. "Not Found"
	StatusCode int
}

// OK reports whether the status code is in the 2xx range.
func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
