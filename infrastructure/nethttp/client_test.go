package nethttp

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
)

func TestClient_Post(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := New().Post(context.Background(), srv.URL, "application/json", []byte(`{"chainId":42220}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"chainId":42220}`, gotBody)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusText)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers["Content-Type"][0])
}

func TestClient_ErrorStatusIsNotAnError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantText string
	}{
		{name: "not found", status: http.StatusNotFound, wantText: "Not Found"},
		{name: "bad request", status: http.StatusBadRequest, wantText: "Bad Request"},
		{name: "internal", status: http.StatusInternalServerError, wantText: "Internal Server Error"},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantText: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			resp, err := New().Post(context.Background(), srv.URL, "application/json", nil)
			require.NoError(t, err)
			assert.Equal(t, 1, calls)
			assert.False(t, resp.OK())
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.wantText, resp.StatusText)
			assert.Equal(t, "nope", string(resp.Body))
		})
	}
}

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "divvi-go-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	c := New(WithUserAgent("divvi-go-test"))
	resp, err := c.Do(context.Background(), ports.HTTPRequest{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", string(resp.Body))
}

func TestClient_Do_MissingURL(t *testing.T) {
	_, err := New().Do(context.Background(), ports.HTTPRequest{Method: "GET"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL is required")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	resp, err := New().Post(context.Background(), url, "application/json", nil)
	assert.Nil(t, resp)
	require.Error(t, err)
}

type failingTransport struct {
	err error
}

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func TestClient_TransportErrorUnchanged(t *testing.T) {
	refused := stdErrors.New("connection refused")
	c := New(WithTransport(failingTransport{err: refused}))

	resp, err := c.Post(context.Background(), "http://example.invalid/x", "application/json", []byte(`{}`))
	assert.Nil(t, resp)

	var urlErr *url.Error
	require.True(t, stdErrors.As(err, &urlErr), "want *url.Error, got %T", err)
	assert.Same(t, urlErr, err, "transport error must not be wrapped")
	assert.Same(t, refused, urlErr.Err)
	assert.Equal(t, "Post", urlErr.Op)
	assert.Equal(t, 1, strings.Count(err.Error(), "example.invalid"))
}

func TestClient_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Post(ctx, srv.URL, "application/json", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_MaxBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	resp, err := New(WithMaxBodySize(10)).Post(context.Background(), srv.URL, "text/plain", nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 10)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("end"))
	}))
	defer srv.Close()

	resp, err := New(WithFollowRedirects(false)).Do(context.Background(), ports.HTTPRequest{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = New().Do(context.Background(), ports.HTTPRequest{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, "end", string(resp.Body))
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := defaultClientConfig()
	assert.Zero(t, cfg.timeout)
	assert.True(t, cfg.followRedirects)
	assert.Equal(t, 10, cfg.maxRedirects)

	WithTimeout(-1)(&cfg)
	assert.Zero(t, cfg.timeout)
	WithTimeout(time.Second)(&cfg)
	assert.Equal(t, time.Second, cfg.timeout)
}
