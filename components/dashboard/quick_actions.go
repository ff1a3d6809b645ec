package dashboard

import "context"

// QuickAction is a navigation shortcut tile.
type QuickAction struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Path        string `json:"path"`
	Color       string `json:"color"`
}

// DefaultQuickActions returns the shortcut tiles shown on the dashboard.
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{Label: "New Prescription", Description: "Fill a new prescription", Icon: "file-plus", Path: "/prescriptions/new", Color: "blue"},
		{Label: "Add Inventory", Description: "Receive stock into inventory", Icon: "package-plus", Path: "/inventory/new", Color: "green"},
		{Label: "Place Order", Description: "Order from a supplier", Icon: "shopping-cart", Path: "/orders/new", Color: "purple"},
		{Label: "View Reports", Description: "Sales and dispensing reports", Icon: "bar-chart-2", Path: "/reports", Color: "orange"},
	}
}

func newQuickActionsProvider(actions []QuickAction) Provider {
	return ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		list := actions
		if custom := quickActionsFromConfig(meta.Instance.Configuration["actions"]); len(custom) > 0 {
			list = custom
		}
		tiles := make([]map[string]any, 0, len(list))
		for _, action := range list {
			tiles = append(tiles, map[string]any{
				"label":       action.Label,
				"description": action.Description,
				"icon":        action.Icon,
				"path":        action.Path,
				"color":       action.Color,
			})
		}
		return WidgetData{"actions": tiles}, nil
	})
}

func quickActionsFromConfig(v any) []QuickAction {
	items := mapSliceValue(v)
	if items == nil {
		return nil
	}
	out := make([]QuickAction, 0, len(items))
	for _, item := range items {
		action := QuickAction{
			Label:       stringValue(item["label"], ""),
			Description: stringValue(item["description"], ""),
			Icon:        stringValue(item["icon"], "zap"),
			Path:        stringValue(item["path"], ""),
			Color:       stringValue(item["color"], "blue"),
		}
		if action.Label == "" || action.Path == "" {
			continue
		}
		out = append(out, action)
	}
	return out
}
