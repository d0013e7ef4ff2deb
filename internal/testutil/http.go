package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
)

// PostCall records one call to MockHTTPClient.Post.
type PostCall struct {
	URL         string
	ContentType string
	Body        []byte
}

// MockHTTPClient is a mock implementation of ports.HTTPClient for testing.
// Unset functions answer 200 OK.
type MockHTTPClient struct {
	DoFunc   func(ctx context.Context, req ports.HTTPRequest) (*ports.HTTPResponse, error)
	PostFunc func(ctx context.Context, url string, contentType string, body []byte) (*ports.HTTPResponse, error)

	mu    sync.Mutex
	posts []PostCall
}

var _ ports.HTTPClient = (*MockHTTPClient)(nil)

// Do implements ports.HTTPClient.
func (m *MockHTTPClient) Do(ctx context.Context, req ports.HTTPRequest) (*ports.HTTPResponse, error) {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, req)
	}
	return Response(http.StatusOK, `{"status":"ok"}`), nil
}

// Post implements ports.HTTPClient.
func (m *MockHTTPClient) Post(ctx context.Context, url string, contentType string, body []byte) (*ports.HTTPResponse, error) {
	m.mu.Lock()
	m.posts = append(m.posts, PostCall{URL: url, ContentType: contentType, Body: body})
	m.mu.Unlock()

	if m.PostFunc != nil {
		return m.PostFunc(ctx, url, contentType, body)
	}
	return m.Do(ctx, ports.HTTPRequest{
		Method:  http.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
	})
}

// Posts returns the recorded Post calls.
func (m *MockHTTPClient) Posts() []PostCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PostCall(nil), m.posts...)
}

// RespondWith returns a mock that answers every request with status and body.
func RespondWith(status int, body string) *MockHTTPClient {
	return &MockHTTPClient{
		DoFunc: func(context.Context, ports.HTTPRequest) (*ports.HTTPResponse, error) {
			return Response(status, body), nil
		},
	}
}

// Response builds a response with the standard status text for status.
func Response(status int, body string) *ports.HTTPResponse {
	return &ports.HTTPResponse{
		Headers:    map[string][]string{"Content-Type": {"application/json"}},
		Body:       []byte(body),
		Proto:      "HTTP/1.1",
		StatusText: http.StatusText(status),
		StatusCode: status,
	}
}
