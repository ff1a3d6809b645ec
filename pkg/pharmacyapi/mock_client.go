package pharmacyapi

import (
	"context"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Stats      []dashboard.Stat
	Dispensing []dashboard.DispensingPoint
	Alerts     []dashboard.Alert
}

// DefaultMockData returns the demo dataset.
func DefaultMockData(now time.Time) MockData {
	values := []float64{132, 148, 141, 167, 159, 121, 98, 145, 152, 160, 171, 166, 118, 104}
	day := now.UTC().Truncate(24 * time.Hour)
	points := make([]dashboard.DispensingPoint, len(values))
	for i, value := range values {
		points[i] = dashboard.DispensingPoint{Day: day.AddDate(0, 0, i-len(values)+1), Count: value}
	}
	return MockData{
		Stats:      dashboard.DefaultStats(),
		Dispensing: points,
		Alerts:     dashboard.DefaultAlerts(),
	}
}

// MockClient implements Client using in-memory fixtures. Alert actions are
// applied to an InMemoryAlertStore so resolved alerts leave the open list.
type MockClient struct {
	mu     sync.RWMutex
	data   MockData
	alerts *dashboard.InMemoryAlertStore
}

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{
		data:   data,
		alerts: dashboard.NewInMemoryAlertStore(data.Alerts),
	}
}

// FetchStats returns the configured stats.
func (c *MockClient) FetchStats(context.Context) ([]dashboard.Stat, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.Stat(nil), c.data.Stats...), nil
}

// FetchDispensing returns the trailing days of the configured series.
func (c *MockClient) FetchDispensing(_ context.Context, days int) ([]dashboard.DispensingPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	points := c.data.Dispensing
	if days > 0 && days < len(points) {
		points = points[len(points)-days:]
	}
	return append([]dashboard.DispensingPoint(nil), points...), nil
}

// FetchAlerts returns the open alerts.
func (c *MockClient) FetchAlerts(ctx context.Context) ([]dashboard.Alert, error) {
	return c.alerts.OpenAlerts(ctx)
}

// FetchAlert returns a single alert.
func (c *MockClient) FetchAlert(ctx context.Context, id string) (dashboard.Alert, error) {
	return c.alerts.Alert(ctx, id)
}

// ResolveAlert records the action.
func (c *MockClient) ResolveAlert(ctx context.Context, id, notes string) (dashboard.AlertResolution, error) {
	return c.alerts.TakeAction(ctx, id, notes)
}
