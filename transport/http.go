package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const maxErrorBody = 4 * 1024

// StatusError is returned when the backend refuses to start a stream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport posts the request and decodes the chunked response body.
type HTTPTransport struct {
	client    *http.Client
	endpoint  string
	headers   map[string]string
	chunkSize int
	opts      []stream.Option
}

func NewHTTP(c config.BackendConfig, opts ...stream.Option) (*HTTPTransport, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	endpoint, err := url.JoinPath(c.BaseURL, c.StreamPath)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}

	// no client timeout, a stream may legitimately run for minutes.
	// ConnectTimeout bounds the wait for response headers instead.
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: c.ConnectTimeout,
		},
	}

	return &HTTPTransport{
		client:    client,
		endpoint:  endpoint,
		headers:   c.Headers,
		chunkSize: c.ChunkSize,
		opts:      opts,
	}, nil
}

func (t *HTTPTransport) Open(ctx context.Context, req *Request) (*Stream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cancel()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	dec := stream.NewDecoder(t.opts...)
	return startStream(ctx, cancel, dec, func(ctx context.Context, emit EmitFunc) error {
		defer resp.Body.Close()
		return ReadBody(ctx, resp.Body, dec, t.chunkSize, emit)
	}), nil
}
