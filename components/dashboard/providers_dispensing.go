package dashboard

import (
	"context"
	"fmt"
	"time"
)

// DispensingPoint is one day of dispensed prescriptions.
type DispensingPoint struct {
	Day   time.Time
	Count float64
}

// DispensingQuery describes the requested window.
type DispensingQuery struct {
	Days   int
	Viewer ViewerContext
}

// DispensingRepository supplies the dispensing trend series.
type DispensingRepository interface {
	FetchDispensing(ctx context.Context, query DispensingQuery) ([]DispensingPoint, error)
}

// DispensingTrendProvider charts prescriptions dispensed per day. Instance
// configuration may set days (default 7), title and theme.
type DispensingTrendProvider struct {
	repo     DispensingRepository
	renderer *ChartRenderer
}

// NewDispensingTrendProvider builds a provider backed by repo. A nil renderer
// draws a line chart through SharedChartCache.
func NewDispensingTrendProvider(repo DispensingRepository, renderer *ChartRenderer) Provider {
	if renderer == nil {
		renderer = NewChartRenderer(ChartLine)
	}
	return &DispensingTrendProvider{repo: repo, renderer: renderer}
}

// Fetch implements Provider.
func (p *DispensingTrendProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("dispensing provider: repository is required")
	}
	cfg := meta.Instance.Configuration
	days := intValue(cfg["days"], 7)
	points, err := p.repo.FetchDispensing(ctx, DispensingQuery{Days: days, Viewer: meta.Viewer})
	if err != nil {
		return nil, fmt.Errorf("dispensing provider: %w", err)
	}

	series := ChartSeries{Name: "Dispensed", Points: make([]ChartPoint, len(points))}
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.Day.Format("Mon")
		series.Points[i] = ChartPoint{Label: point.Day.Format("2006-01-02"), Value: point.Count}
	}
	data, err := p.renderer.Render(meta.Instance.ID, ChartSpec{
		Title:    stringValue(cfg["title"], "Prescriptions Dispensed"),
		Subtitle: fmt.Sprintf("Last %d days", days),
		Theme:    stringValue(cfg["theme"], ""),
		Labels:   labels,
		Series:   []ChartSeries{series},
	})
	if err != nil {
		return nil, err
	}
	data["total"] = sumPoints(points)
	return data, nil
}

func sumPoints(points []DispensingPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Count
	}
	return total
}

// NewStaticDispensingRepository serves the provided points, trimmed to the requested window.
func NewStaticDispensingRepository(points []DispensingPoint) DispensingRepository {
	return staticDispensingRepository{points: points}
}

type staticDispensingRepository struct {
	points []DispensingPoint
}

func (s staticDispensingRepository) FetchDispensing(_ context.Context, query DispensingQuery) ([]DispensingPoint, error) {
	points := s.points
	if query.Days > 0 && query.Days < len(points) {
		points = points[len(points)-query.Days:]
	}
	out := make([]DispensingPoint, len(points))
	copy(out, points)
	return out, nil
}

func defaultDispensingSeries(now time.Time) []DispensingPoint {
	values := []float64{132, 148, 141, 167, 159, 121, 98, 145, 152, 160, 171, 166, 118, 104}
	day := now.UTC().Truncate(24 * time.Hour)
	points := make([]DispensingPoint, len(values))
	for i, value := range values {
		points[i] = DispensingPoint{
			Day:   day.AddDate(0, 0, i-len(values)+1),
			Count: value,
		}
	}
	return points
}
