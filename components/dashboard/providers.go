package dashboard

import (
	"context"
	"time"
)

// Provider loads the data a widget template draws, e.g. today's metric
// cards or the open alert list.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext is the instance being drawn and who is looking at it.
type WidgetContext struct {
	Instance WidgetInstance
	Viewer   ViewerContext
}

// WidgetData is handed to the widget template as "data".
type WidgetData map[string]any

// defaultProviders serve the built-in widgets from demo data until
// Registry.RegisterProviders binds real sources.
var defaultProviders = map[string]Provider{
	WidgetStats:        newStatsProvider(nil),
	WidgetQuickActions: newQuickActionsProvider(DefaultQuickActions()),
	WidgetDispensingTrend: NewDispensingTrendProvider(
		NewStaticDispensingRepository(defaultDispensingSeries(time.Now())),
		NewChartRenderer(ChartLine),
	),
}

// NewStatsProvider builds the stats widget provider over src.
func NewStatsProvider(src StatsSource) Provider {
	return newStatsProvider(src)
}

// NewQuickActionsProvider builds the quick actions provider. Widget
// configuration may replace the tiles per instance.
func NewQuickActionsProvider(actions []QuickAction) Provider {
	return newQuickActionsProvider(actions)
}
