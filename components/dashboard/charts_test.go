package dashboard

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklySpec(title string) ChartSpec {
	return ChartSpec{
		Title:  title,
		Labels: []string{"Mon", "Tue", "Wed"},
		Series: []ChartSeries{{Name: "Dispensed", Points: []ChartPoint{{Value: 100}, {Value: 150}, {Value: 120}}}},
	}
}

func TestChartRendererKinds(t *testing.T) {
	t.Parallel()
	for _, kind := range []string{ChartLine, ChartBar} {
		renderer := NewChartRenderer(kind, WithChartCache(nil))
		data, err := renderer.Render("w-1", weeklySpec("Dispensed"))
		require.NoError(t, err, kind)
		assert.Equal(t, kind, data["chart_type"])
		assert.Equal(t, "Dispensed", data["title"])
		assert.Equal(t, string(types.ThemeWesteros), data["theme"])
		assert.Contains(t, html(data), "echarts")
	}
}

func TestChartRendererRejects(t *testing.T) {
	t.Parallel()
	_, err := NewChartRenderer("bubble", WithChartCache(nil)).Render("w-1", weeklySpec("x"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = NewChartRenderer(ChartLine, WithChartCache(nil)).Render("w-1", ChartSpec{Title: "empty"})
	assert.ErrorContains(t, err, "series")
}

func TestChartRendererUsesCache(t *testing.T) {
	t.Parallel()
	cache := &countingCache{}
	renderer := NewChartRenderer(ChartBar, WithChartCache(cache))
	for i := 0; i < 2; i++ {
		_, err := renderer.Render("w-1", weeklySpec("Cached"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), cache.calls)
}

func TestChartRendererTheme(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer(ChartBar, WithChartCache(nil), WithChartTheme(types.ThemeWalden))
	data, err := renderer.Render("w-1", weeklySpec("Themed"))
	require.NoError(t, err)
	assert.Equal(t, types.ThemeWalden, data["theme"])

	spec := weeklySpec("Themed")
	spec.Theme = "wonderland"
	data, err = renderer.Render("w-1", spec)
	require.NoError(t, err)
	assert.Equal(t, "wonderland", data["theme"])
}

func TestChartSpecFromConfig(t *testing.T) {
	t.Parallel()
	spec := chartSpecFromConfig(map[string]any{
		"title": "Refills",
		"series": []any{
			map[string]any{"name": "A", "data": []any{
				map[string]any{"name": "Mon", "value": 3},
				map[string]any{"name": "Tue", "value": "4.5"},
			}},
			map[string]any{"name": "empty", "data": []any{}},
		},
	})
	require.Len(t, spec.Series, 1)
	assert.Equal(t, "Refills", spec.Title)
	assert.Equal(t, 4.5, spec.Series[0].Points[1].Value)
	assert.Equal(t, []string{"Mon", "Tue"}, inferredAxisLabels(spec.Series))
	assert.Equal(t, []string{"Item 1", "Item 2"}, inferredAxisLabels([]ChartSeries{{Points: make([]ChartPoint, 2)}}))
}

func TestChartProviderDrawsConfiguredSeries(t *testing.T) {
	t.Parallel()
	provider := NewChartProvider(NewChartRenderer(ChartBar, WithChartCache(nil)))
	data, err := provider.Fetch(context.Background(), sampleChartContext("acme.widget.refills", map[string]any{
		"title":  "Refills",
		"x_axis": []string{"Mon", "Tue"},
		"series": []map[string]any{{"name": "Refills", "data": []int{4, 9}}},
	}))
	require.NoError(t, err)
	assert.Equal(t, ChartBar, data["chart_type"])
	assert.Equal(t, "Refills", data["title"])
}

func TestDispensingTrendProviderRendersWindow(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	repo := NewStaticDispensingRepository(defaultDispensingSeries(now))
	provider := NewDispensingTrendProvider(repo, NewChartRenderer(ChartLine, WithChartCache(nil)))

	data, err := provider.Fetch(context.Background(), sampleChartContext(WidgetDispensingTrend, map[string]any{"days": 3}))
	require.NoError(t, err)

	assert.Equal(t, "Prescriptions Dispensed", data["title"])
	assert.Equal(t, "Last 3 days", data["subtitle"])
	assert.Equal(t, float64(166+118+104), data["total"])
	assert.Contains(t, html(data), "echarts")
}

func TestServiceIntegratesDispensingChart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryWidgetStore()
	require.NoError(t, RegisterAreas(ctx, store))
	registry := NewRegistry()
	require.NoError(t, RegisterDefinitions(ctx, store, registry))
	service := NewService(Options{WidgetStore: store, Providers: registry})
	err := service.AddWidget(ctx, AddWidgetRequest{
		DefinitionID:  WidgetDispensingTrend,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{"days": 5, "title": "Layout Chart"},
	})
	require.NoError(t, err)

	layout, err := service.ConfigureLayout(ctx, ViewerContext{UserID: "integration"})
	require.NoError(t, err)

	insights := layout.Areas[AreaInsights]
	require.Len(t, insights, 1)
	data, ok := insights[0].Metadata["data"].(WidgetData)
	require.True(t, ok, "chart metadata should include widget data")
	assert.Equal(t, "Layout Chart", data["title"])
	assert.Equal(t, ChartLine, data["chart_type"])
	assert.Contains(t, html(data), "echarts")
}

func sampleChartContext(definition string, cfg map[string]any) WidgetContext {
	return WidgetContext{
		Instance: WidgetInstance{
			ID:            definition + "-instance",
			DefinitionID:  definition,
			Configuration: cfg,
		},
		Viewer: ViewerContext{UserID: "tester", Locale: "en"},
	}
}

func html(data WidgetData) string {
	val, _ := data["chart_html"].(string)
	return strings.ToLower(val)
}

type countingCache struct {
	calls int32
	value string
}

func (c *countingCache) GetOrRender(_ string, render func() (string, error)) (string, error) {
	if c.value != "" {
		return c.value, nil
	}
	out, err := render()
	if err != nil {
		return "", err
	}
	atomic.AddInt32(&c.calls, 1)
	c.value = out
	return out, nil
}

func BenchmarkDispensingChartCached(b *testing.B) {
	renderer := NewChartRenderer(ChartLine, WithChartCache(NewChartCache(5*time.Minute)))
	spec := weeklySpec("Cached Benchmark")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := renderer.Render("bench", spec); err != nil {
			b.Fatal(err)
		}
	}
}
