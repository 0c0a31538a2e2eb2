package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ryanreadbooks/tokkistream/config"
)

const (
	defaultHealthPath    = "/api/health"
	defaultHealthTimeout = 10 * time.Second
)

// Health is the backend health report. Fields holds the whole JSON body.
type Health struct {
	StatusCode int
	Status     string
	Latency    time.Duration
	Fields     map[string]any
}

func (h *Health) Healthy() bool {
	return h.StatusCode == http.StatusOK && (h.Status == "" || h.Status == "healthy" || h.Status == "ok")
}

// CheckHealth GETs the health endpoint of the backend. A non-2xx answer is
// reported in Health, only an unreachable backend is an error.
func CheckHealth(ctx context.Context, c config.BackendConfig) (Health, error) {
	if c.BaseURL == "" {
		return Health{}, fmt.Errorf("backend base url is required")
	}

	path := c.HealthPath
	if path == "" {
		path = defaultHealthPath
	}
	endpoint, err := url.JoinPath(c.BaseURL, path)
	if err != nil {
		return Health{}, fmt.Errorf("invalid backend url: %w", err)
	}

	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Health{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	h := Health{StatusCode: resp.StatusCode, Latency: time.Since(start)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return h, fmt.Errorf("failed to read health body: %w", err)
	}

	// a body that is not a json object is kept as the status text
	if err := json.Unmarshal(body, &h.Fields); err != nil {
		h.Status = strings.TrimSpace(string(body))
		return h, nil
	}
	if status, ok := h.Fields["status"].(string); ok {
		h.Status = status
	}

	return h, nil
}
