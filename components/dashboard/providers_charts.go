package dashboard

import (
	"context"
	"strings"
)

// chartCapabilityPrefix marks manifest widgets drawn from their own
// configuration, e.g. "chart:bar".
const chartCapabilityPrefix = "chart:"

// NewChartProvider draws a chart described entirely by the widget
// configuration: title, subtitle, theme, x_axis and series, where each
// series is {name, data} and data holds numbers or {name, value} pairs.
func NewChartProvider(renderer *ChartRenderer) Provider {
	return ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		return renderer.Render(meta.Instance.ID, chartSpecFromConfig(meta.Instance.Configuration))
	})
}

// chartKindFor returns the chart kind a manifest provider declares, if any.
func chartKindFor(meta ManifestProvider) (string, bool) {
	for _, capability := range meta.Capabilities {
		if kind, ok := strings.CutPrefix(capability, chartCapabilityPrefix); ok && kind != "" {
			return kind, true
		}
	}
	return "", false
}

func chartSpecFromConfig(cfg map[string]any) ChartSpec {
	spec := ChartSpec{
		Title:    stringValue(cfg["title"], "Chart"),
		Subtitle: stringValue(cfg["subtitle"], ""),
		Theme:    strings.TrimSpace(stringValue(cfg["theme"], "")),
		Labels:   stringSliceValue(cfg["x_axis"]),
	}
	for _, item := range mapSliceValue(cfg["series"]) {
		series := ChartSeries{
			Name:   stringValue(item["name"], "Series"),
			Points: chartPoints(item["data"]),
		}
		if len(series.Points) > 0 {
			spec.Series = append(spec.Series, series)
		}
	}
	return spec
}

func chartPoints(v any) []ChartPoint {
	var values []any
	switch data := v.(type) {
	case []float64:
		for _, f := range data {
			values = append(values, f)
		}
	case []int:
		for _, n := range data {
			values = append(values, n)
		}
	case []any:
		values = data
	default:
		return nil
	}
	points := make([]ChartPoint, 0, len(values))
	for _, value := range values {
		if m, ok := value.(map[string]any); ok {
			points = append(points, ChartPoint{Label: stringValue(m["name"], ""), Value: float64Value(m["value"])})
			continue
		}
		points = append(points, ChartPoint{Value: float64Value(value)})
	}
	return points
}
