package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Chart kinds understood by ChartRenderer.
const (
	ChartLine = "line"
	ChartBar  = "bar"
)

const defaultChartHeight = "320px"

// SharedChartCache backs every renderer built without WithChartCache.
var SharedChartCache = NewChartCache(5 * time.Minute)

// ChartSeries is one legend entry.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a single value, optionally labeled.
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// ChartSpec is everything needed to draw a chart. Labels name the x axis;
// when empty they are taken from the longest series.
type ChartSpec struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Theme    string        `json:"theme,omitempty"`
	Labels   []string      `json:"labels,omitempty"`
	Series   []ChartSeries `json:"series"`
}

// ChartRenderer turns a ChartSpec into embeddable go-echarts HTML.
type ChartRenderer struct {
	kind       string
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache. A nil cache renders on every call.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the theme used when a spec names none.
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost loads the ECharts script from host instead of the
// go-echarts default.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer for ChartLine or ChartBar.
func NewChartRenderer(kind string, opts ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		kind:  strings.ToLower(strings.TrimSpace(kind)),
		cache: SharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind reports the chart kind.
func (r *ChartRenderer) Kind() string {
	return r.kind
}

// Render draws spec for the given widget instance. Cached output is keyed by
// instance so widget events can evict it.
func (r *ChartRenderer) Render(instanceID string, spec ChartSpec) (WidgetData, error) {
	if len(spec.Series) == 0 {
		return nil, fmt.Errorf("chart series is required")
	}
	if spec.Theme == "" {
		spec.Theme = r.theme
	}
	if len(spec.Labels) == 0 {
		spec.Labels = inferredAxisLabels(spec.Series)
	}
	draw := func() (string, error) { return r.draw(spec) }

	var (
		html string
		err  error
	)
	if r.cache != nil {
		html, err = r.cache.GetOrRender(chartKey(instanceID, r.kind, spec), draw)
	} else {
		html, err = draw()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": r.kind,
		"title":      spec.Title,
		"subtitle":   spec.Subtitle,
		"theme":      spec.Theme,
	}, nil
}

func (r *ChartRenderer) draw(spec ChartSpec) (string, error) {
	global := r.globalOptions(spec)
	switch r.kind {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			data := make([]opts.BarData, len(s.Points))
			for i, p := range s.Points {
				data[i] = opts.BarData{Name: p.Label, Value: p.Value}
			}
			bar.AddSeries(s.Name, data)
		}
		return renderHTML(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			data := make([]opts.LineData, len(s.Points))
			for i, p := range s.Points {
				data[i] = opts.LineData{Name: p.Label, Value: p.Value}
			}
			line.AddSeries(s.Name, data)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderHTML(line)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", r.kind)
	}
}

func (r *ChartRenderer) globalOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{Theme: spec.Theme, Width: "100%", Height: defaultChartHeight}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	}
}

func renderHTML(chart interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func inferredAxisLabels(series []ChartSeries) []string {
	var longest ChartSeries
	for _, s := range series {
		if len(s.Points) > len(longest.Points) {
			longest = s
		}
	}
	labels := make([]string, len(longest.Points))
	for i, p := range longest.Points {
		labels[i] = p.Label
		if labels[i] == "" {
			labels[i] = fmt.Sprintf("Item %d", i+1)
		}
	}
	return labels
}
