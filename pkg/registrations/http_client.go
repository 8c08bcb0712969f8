package registrations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

// DefaultTimeout bounds a single poll when no client is supplied.
const DefaultTimeout = 10 * time.Second

// HTTPConfig configures the HTTP registration client.
type HTTPConfig struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient reads registration counts from a JSON endpoint with a plain GET.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient builds a client for the configured endpoint. An empty or
// placeholder endpoint is accepted here and reported as a ConfigurationError
// on every fetch, so the board can still fall back to demo data.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		client:   httpClient,
	}
}

// Endpoint implements eventboard.Source.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// FetchSnapshot implements eventboard.Source.
func (c *HTTPClient) FetchSnapshot(ctx context.Context) (eventboard.Snapshot, error) {
	if err := eventboard.ValidateEndpoint(c.endpoint); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &eventboard.ConfigurationError{
			Endpoint: c.endpoint,
			Reason:   fmt.Sprintf("build request: %v", err),
		}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &eventboard.TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var buf bytes.Buffer
		_, _ = io.CopyN(&buf, resp.Body, 4096)
		return nil, &eventboard.TransportError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("remote error %d: %s", resp.StatusCode, bytes.TrimSpace(buf.Bytes())),
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &eventboard.TransportError{Endpoint: c.endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return DecodeSnapshot(body)
}

var _ eventboard.Source = (*HTTPClient)(nil)
