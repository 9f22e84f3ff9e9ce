package infrastructure

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auto_repost_instagram/config"
)

// HTTPClient wraps two clients over one pooled transport. API calls use the
// short request timeout; media uploads and downloads use the transfer timeout.
type HTTPClient struct {
	client   *http.Client
	transfer *http.Client
}

// NewHTTPClient creates a new HTTP client for I/O bound operations
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},
		ForceAttemptHTTP2: true,
		WriteBufferSize:   64 * 1024,
		ReadBufferSize:    64 * 1024,
	}

	timeout := 60 * time.Second
	transferTimeout := 30 * time.Minute
	if cfg != nil && cfg.HTTPClientTimeout > 0 {
		timeout = cfg.HTTPClientTimeout
	}
	if cfg != nil && cfg.TransferTimeout > 0 {
		transferTimeout = cfg.TransferTimeout
	}

	return &HTTPClient{
		client:   &http.Client{Transport: transport, Timeout: timeout},
		transfer: &http.Client{Transport: transport, Timeout: transferTimeout},
	}
}

// NewHTTPClientFrom wraps an existing client for both roles, mainly for tests
func NewHTTPClientFrom(client *http.Client) *HTTPClient {
	return &HTTPClient{client: client, transfer: client}
}

// PostForm performs a form-encoded API POST bound to ctx
func (c *HTTPClient) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

// PostBody streams an upload body under the transfer timeout
func (c *HTTPClient) PostBody(ctx context.Context, rawURL, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return c.transfer.Do(req)
}

// Do performs a media transfer request under the transfer timeout
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.transfer.Do(req)
}
