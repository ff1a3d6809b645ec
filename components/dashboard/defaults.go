package dashboard

import "github.com/go-echarts/go-echarts/v2/types"

// Dashboard area codes.
const (
	AreaStats    = "pharmacy.dashboard.stats"
	AreaActions  = "pharmacy.dashboard.actions"
	AreaAlerts   = "pharmacy.dashboard.alerts"
	AreaInsights = "pharmacy.dashboard.insights"
)

// Built-in widget codes.
const (
	WidgetStats           = "pharmacy.widget.stats"
	WidgetQuickActions    = "pharmacy.widget.quick_actions"
	WidgetAlerts          = "pharmacy.widget.alerts"
	WidgetDispensingTrend = "pharmacy.widget.dispensing_trend"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaStats, Name: "Pharmacy Dashboard (Stats)", Description: "Metric cards row"},
	{Code: AreaActions, Name: "Pharmacy Dashboard (Quick Actions)", Description: "Navigation shortcut tiles"},
	{Code: AreaAlerts, Name: "Pharmacy Dashboard (Alerts)", Description: "Open alerts awaiting action"},
	{Code: AreaInsights, Name: "Pharmacy Dashboard (Insights)", Description: "Charts and trends"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetStats,
		Name:        "Dashboard Stats",
		Description: "Key pharmacy metrics",
		Category:    "stats",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metrics": map[string]any{
					"type":        "array",
					"uniqueItems": true,
					"items": map[string]any{
						"type": "string",
						"enum": []string{"prescriptions", "low_stock", "pending_orders", "revenue"},
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetQuickActions,
		Name:        "Quick Actions",
		Description: "Common pharmacy shortcuts",
		Category:    "actions",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"actions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"label", "path"},
						"properties": map[string]any{
							"label":       map[string]any{"type": "string", "minLength": 1},
							"description": map[string]any{"type": "string"},
							"icon":        map[string]any{"type": "string"},
							"path":        map[string]any{"type": "string", "pattern": "^/"},
							"color":       map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
	{
		Code:        WidgetAlerts,
		Name:        "Alerts",
		Description: "Open alerts with recommended actions",
		Category:    "alerts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": 5},
				"types": map[string]any{
					"type":        "array",
					"uniqueItems": true,
					"items": map[string]any{
						"type": "string",
						"enum": []string{string(AlertCritical), string(AlertWarning), string(AlertInfo)},
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetDispensingTrend,
		Name:        "Dispensing Trend",
		Description: "Prescriptions dispensed per day",
		Category:    "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days":  map[string]any{"type": "integer", "minimum": 1, "maximum": 14, "default": 7},
				"title": map[string]any{"type": "string"},
				"theme": map[string]any{
					"type": "string",
					"enum": []string{
						string(types.ThemeWesteros),
						string(types.ThemeWalden),
						string(types.ThemeWonderland),
						string(types.ThemeChalk),
					},
				},
			},
			"additionalProperties": false,
		},
	},
}

var defaultSeedConfigs = []AddWidgetRequest{
	{DefinitionID: WidgetStats, AreaCode: AreaStats, Configuration: map[string]any{}},
	{DefinitionID: WidgetQuickActions, AreaCode: AreaActions, Configuration: map[string]any{}},
	{DefinitionID: WidgetAlerts, AreaCode: AreaAlerts, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetDispensingTrend, AreaCode: AreaInsights, Configuration: map[string]any{"days": 7}},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultAreaCodes lists the area codes in render order.
func DefaultAreaCodes() []string {
	codes := make([]string, len(defaultAreaDefinitions))
	for i, area := range defaultAreaDefinitions {
		codes[i] = area.Code
	}
	return codes
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns starter widget configurations.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		copyCfg.Configuration = make(map[string]any, len(cfg.Configuration))
		for k, v := range cfg.Configuration {
			copyCfg.Configuration[k] = v
		}
		out[i] = copyCfg
	}
	return out
}
