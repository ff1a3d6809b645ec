package pharmacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// HTTPConfig configures the HTTP pharmacy client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the pharmacy management backend over REST.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for a live backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("pharmacyapi: base url is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("pharmacyapi: invalid base url: %w", err)
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

// FetchStats implements StatsClient.
func (c *HTTPClient) FetchStats(ctx context.Context) ([]dashboard.Stat, error) {
	var resp statsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toStats(), nil
}

// FetchDispensing implements DispensingClient.
func (c *HTTPClient) FetchDispensing(ctx context.Context, days int) ([]dashboard.DispensingPoint, error) {
	path := "/dispensing"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var resp dispensingResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toPoints()
}

// FetchAlerts implements AlertClient.
func (c *HTTPClient) FetchAlerts(ctx context.Context) ([]dashboard.Alert, error) {
	var resp alertsResponse
	if err := c.do(ctx, http.MethodGet, "/alerts?status=open", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// FetchAlert implements AlertClient. A 404 maps to dashboard.ErrAlertNotFound.
func (c *HTTPClient) FetchAlert(ctx context.Context, id string) (dashboard.Alert, error) {
	var alert dashboard.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts/"+url.PathEscape(id), nil, &alert); err != nil {
		return dashboard.Alert{}, err
	}
	return alert, nil
}

// ResolveAlert implements AlertClient.
func (c *HTTPClient) ResolveAlert(ctx context.Context, id, notes string) (dashboard.AlertResolution, error) {
	var resp resolutionResponse
	if err := c.do(ctx, http.MethodPost, "/alerts/"+url.PathEscape(id)+"/actions", actionRequest{Notes: notes}, &resp); err != nil {
		return dashboard.AlertResolution{}, err
	}
	return resp.toResolution(id), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("pharmacyapi: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("pharmacyapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pharmacyapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", dashboard.ErrAlertNotFound, path)
	}
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("pharmacyapi: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("pharmacyapi: decode response: %w", err)
	}
	return nil
}

type statsItem struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle"`
	Trend    string `json:"trend"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

type statsResponse struct {
	Stats []statsItem `json:"stats"`
}

func (r statsResponse) toStats() []dashboard.Stat {
	out := make([]dashboard.Stat, len(r.Stats))
	for i, item := range r.Stats {
		trend := dashboard.TrendUp
		if item.Trend == string(dashboard.TrendDown) {
			trend = dashboard.TrendDown
		}
		out[i] = dashboard.Stat{
			Key:      item.Key,
			Title:    item.Title,
			Value:    item.Value,
			Subtitle: item.Subtitle,
			Trend:    trend,
			Icon:     item.Icon,
			Color:    item.Color,
		}
	}
	return out
}

type dispensingDay struct {
	Day   string  `json:"day"`
	Count float64 `json:"count"`
}

type dispensingResponse struct {
	Series []dispensingDay `json:"series"`
}

func (r dispensingResponse) toPoints() ([]dashboard.DispensingPoint, error) {
	points := make([]dashboard.DispensingPoint, len(r.Series))
	for i, bucket := range r.Series {
		day, err := time.Parse(time.DateOnly, bucket.Day)
		if err != nil {
			return nil, fmt.Errorf("pharmacyapi: parse dispensing day %q: %w", bucket.Day, err)
		}
		points[i] = dashboard.DispensingPoint{Day: day, Count: bucket.Count}
	}
	return points, nil
}

type alertsResponse struct {
	Alerts []dashboard.Alert `json:"alerts"`
}

type actionRequest struct {
	Notes string `json:"notes"`
}

type resolutionResponse struct {
	ID         string    `json:"id"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
	Notes      string    `json:"notes"`
}

func (r resolutionResponse) toResolution(alertID string) dashboard.AlertResolution {
	return dashboard.AlertResolution{
		ID:         r.ID,
		AlertID:    alertID,
		Notes:      r.Notes,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
	}
}
