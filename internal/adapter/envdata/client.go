// Package envdata looks up satellite and weather context for a location from
// an external environment service, with in-process and shared caches in front.
package envdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

// Client implements domain.EnvironmentProvider over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an environment service client. The timeout bounds every
// lookup so a slow service cannot stall an analysis.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Snapshot fetches the environment for the given coordinates.
func (c *Client) Snapshot(ctx context.Context, lat, lon float64) (domain.EnvironmentSnapshot, error) {
	start := time.Now()
	snap, err := c.fetch(ctx, lat, lon)
	c.metrics.EnvironmentAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.EnvironmentRequests.WithLabelValues("error").Inc()
		return domain.EnvironmentSnapshot{}, err
	}
	c.metrics.EnvironmentRequests.WithLabelValues("success").Inc()
	c.logger.DebugContext(ctx, "environment snapshot fetched", "lat", lat, "lon", lon)
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (domain.EnvironmentSnapshot, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/snapshot?"+params.Encode(), nil)
	if err != nil {
		return domain.EnvironmentSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.EnvironmentSnapshot{}, fmt.Errorf("environment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.EnvironmentSnapshot{}, fmt.Errorf("environment API error: status %d: %s", resp.StatusCode, body)
	}

	var snap domain.EnvironmentSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return domain.EnvironmentSnapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return snap, nil
}
