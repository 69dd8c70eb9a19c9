package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AdminClient queries the HTTP admin endpoint of rollcall-server.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdminClient creates a client for baseURL, e.g. http://127.0.0.1:5580.
// A bare host:port gets the http scheme.
func NewAdminClient(baseURL string, timeout time.Duration) *AdminClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AdminClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health fetches /health.
func (c *AdminClient) Health(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/health")
}

// Ready fetches /ready. A 503 body is still decoded and returned with an error.
func (c *AdminClient) Ready(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/ready")
}

func (c *AdminClient) getJSON(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("GET %s: decode: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return out, nil
}
