package dashboard

import (
	"context"
	"fmt"
)

// AlertsProvider lists open alerts with their icon and a resolve link.
type AlertsProvider struct {
	store      AlertStore
	dialogPath string
}

// NewAlertsProvider builds the provider. dialogPath is a format string taking
// the alert id, e.g. "/pharmacy/alerts/%s/dialog".
func NewAlertsProvider(store AlertStore, dialogPath string) *AlertsProvider {
	if dialogPath == "" {
		dialogPath = "/alerts/%s/dialog"
	}
	return &AlertsProvider{store: store, dialogPath: dialogPath}
}

// Fetch implements Provider.
func (p *AlertsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.store == nil {
		return nil, fmt.Errorf("alerts provider: alert store is required")
	}
	alerts, err := p.store.OpenAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts provider: %w", err)
	}
	cfg := meta.Instance.Configuration
	types := stringSliceValue(cfg["types"])
	limit := intValue(cfg["limit"], 0)

	items := make([]map[string]any, 0, len(alerts))
	for _, alert := range alerts {
		if len(types) > 0 && !containsFold(types, string(alert.Type)) {
			continue
		}
		icon := AlertIconFor(alert.Type)
		items = append(items, map[string]any{
			"id":          alert.ID,
			"title":       alert.Title,
			"description": alert.Description,
			"type":        string(alert.Type),
			"action":      alert.Action,
			"icon":        icon.Name,
			"color":       icon.Color,
			"dialog_url":  fmt.Sprintf(p.dialogPath, alert.ID),
		})
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return WidgetData{
		"alerts": items,
		"total":  len(alerts),
	}, nil
}
