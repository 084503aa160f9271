package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/okian/fraudstream/internal/domain/model"
)

const (
	defaultClientTimeout         = 5 * time.Second
	defaultResponseHeaderTimeout = 4 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultMaxIdleConnsPerHost   = 16
	defaultDialerTimeout         = time.Second
	defaultDialerKeepAlive       = 30 * time.Second

	maxResponseBytes = 1 << 20
	errorBodyExcerpt = 256
)

// HTTPEndpoint posts rows to a plain HTTP scoring service.
type HTTPEndpoint struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPEndpoint.
type HTTPOption func(*HTTPEndpoint)

// WithHTTPClient replaces the tuned default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPEndpoint) {
		if c != nil {
			e.client = c
		}
	}
}

// WithTimeout caps each request. Zero keeps the default.
func WithTimeout(d time.Duration) HTTPOption {
	return func(e *HTTPEndpoint) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// NewHTTPEndpoint creates an endpoint posting to url.
func NewHTTPEndpoint(url string, opts ...HTTPOption) *HTTPEndpoint {
	e := &HTTPEndpoint{url: url, client: newHTTPClient()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newHTTPClient builds a client whose transport never waits forever.
func newHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialerTimeout,
			KeepAlive: defaultDialerKeepAlive,
		}).DialContext,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: tr, Timeout: defaultClientTimeout}
}

// Invoke implements Endpoint.
func (e *HTTPEndpoint) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrInvoke, err)
	}
	httpReq.Header.Set("Content-Type", req.ContentType)
	httpReq.Header.Set("Accept", req.Accept)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvoke, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrInvoke, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt := body
		if len(excerpt) > errorBodyExcerpt {
			excerpt = excerpt[:errorBodyExcerpt]
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrInvoke, resp.StatusCode, bytes.TrimSpace(excerpt))
	}
	return body, nil
}
