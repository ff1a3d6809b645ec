package dashboard

import "context"

// TrendDirection tells whether a stat moved up or down.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
)

// Stat is one metric card.
type Stat struct {
	Key      string         `json:"key"`
	Title    string         `json:"title"`
	Value    string         `json:"value"`
	Subtitle string         `json:"subtitle,omitempty"`
	Trend    TrendDirection `json:"trend"`
	Icon     string         `json:"icon"`
	Color    string         `json:"color"`
}

// StatsSource supplies the metric cards.
type StatsSource interface {
	Stats(ctx context.Context, viewer ViewerContext) ([]Stat, error)
}

// StaticStatsSource serves a fixed list of stats.
type StaticStatsSource struct {
	Items []Stat
}

// Stats returns a copy of the configured stats.
func (s StaticStatsSource) Stats(context.Context, ViewerContext) ([]Stat, error) {
	return append([]Stat(nil), s.Items...), nil
}

// DefaultStats returns the four mock metric cards.
func DefaultStats() []Stat {
	return []Stat{
		{Key: "prescriptions", Title: "Total Prescriptions", Value: "1,284", Subtitle: "+12% from last week", Trend: TrendUp, Icon: "file-text", Color: "blue"},
		{Key: "low_stock", Title: "Low Stock Items", Value: "23", Subtitle: "Requires attention", Trend: TrendDown, Icon: "package", Color: "orange"},
		{Key: "pending_orders", Title: "Pending Orders", Value: "47", Subtitle: "8 arriving today", Trend: TrendUp, Icon: "shopping-cart", Color: "purple"},
		{Key: "revenue", Title: "Revenue Today", Value: "$8,492", Subtitle: "+8% from yesterday", Trend: TrendUp, Icon: "dollar-sign", Color: "green"},
	}
}

func newStatsProvider(src StatsSource) Provider {
	if src == nil {
		src = StaticStatsSource{Items: DefaultStats()}
	}
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		stats, err := src.Stats(ctx, meta.Viewer)
		if err != nil {
			return nil, err
		}
		stats = filterStats(stats, stringSliceValue(meta.Instance.Configuration["metrics"]))
		cards := make([]map[string]any, 0, len(stats))
		for _, stat := range stats {
			cards = append(cards, map[string]any{
				"key":      stat.Key,
				"title":    stat.Title,
				"value":    stat.Value,
				"subtitle": stat.Subtitle,
				"trend":    string(stat.Trend),
				"icon":     stat.Icon,
				"color":    stat.Color,
			})
		}
		return WidgetData{"stats": cards}, nil
	})
}

func filterStats(stats []Stat, keys []string) []Stat {
	if len(keys) == 0 {
		return stats
	}
	index := make(map[string]Stat, len(stats))
	for _, stat := range stats {
		index[stat.Key] = stat
	}
	out := make([]Stat, 0, len(keys))
	for _, key := range keys {
		if stat, ok := index[key]; ok {
			out = append(out, stat)
		}
	}
	return out
}
