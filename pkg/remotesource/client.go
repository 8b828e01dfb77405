// Package remotesource reads the dashboard snapshot from a personal data API.
package remotesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-homedash/components/dashboard"
)

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient fetches profile, activity, bookmarks, and stats over REST and
// assembles them into a dashboard.Snapshot.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ dashboard.DataSource = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the remote API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remotesource: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Snapshot fetches every section. Any failing section fails the snapshot.
func (c *HTTPClient) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	var snapshot dashboard.Snapshot
	if err := c.do(ctx, "/profile", &snapshot.User); err != nil {
		return dashboard.Snapshot{}, err
	}
	var activity []activityEntry
	if err := c.do(ctx, "/activity", &activity); err != nil {
		return dashboard.Snapshot{}, err
	}
	snapshot.Activity = make([]dashboard.ActivityItem, 0, len(activity))
	for _, entry := range activity {
		snapshot.Activity = append(snapshot.Activity, entry.toItem())
	}
	if err := c.do(ctx, "/saved", &snapshot.SavedItems); err != nil {
		return dashboard.Snapshot{}, err
	}
	var stats statsResponse
	if err := c.do(ctx, "/stats", &stats); err != nil {
		return dashboard.Snapshot{}, err
	}
	snapshot.Stats = stats.Items
	snapshot.FocusTimer = time.Duration(stats.FocusMinutes) * time.Minute
	return snapshot, nil
}

func (c *HTTPClient) do(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("remotesource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remotesource: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("remotesource: remote error %d on %s: %s", resp.StatusCode, path, buf.String())
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("remotesource: decode %s: %w", path, err)
	}
	return nil
}

type activityEntry struct {
	Action     string `json:"action"`
	Details    string `json:"details"`
	AgoSeconds int64  `json:"ago_seconds"`
}

func (e activityEntry) toItem() dashboard.ActivityItem {
	return dashboard.ActivityItem{
		Action:  e.Action,
		Details: e.Details,
		Ago:     time.Duration(e.AgoSeconds) * time.Second,
	}
}

type statsResponse struct {
	Items        []dashboard.StatItem `json:"items"`
	FocusMinutes int                  `json:"focus_minutes"`
}
