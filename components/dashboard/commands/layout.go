package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// RefreshWidgetInput asks listeners to redraw one widget.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// RefreshWidgetCommand pushes a widget event through the refresh hooks
// (broadcast and chart cache) without touching the store.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute defaults the event reason to "refresh".
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errNoService
	}
	event := msg.Event
	if event.AreaCode == "" && event.Instance.AreaCode != "" {
		event.AreaCode = event.Instance.AreaCode
	}
	if event.AreaCode == "" {
		return dashboard.ErrAreaRequired
	}
	if event.Reason == "" {
		event.Reason = "refresh"
	}
	if err := c.service.NotifyWidgetUpdated(ctx, event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventWidgetRefreshed, map[string]any{
		"area":      event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SaveLayoutPreferencesInput carries one viewer's layout overrides.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	AreaOrder     map[string][]string     `json:"area_order"`
	HiddenWidgets []string                `json:"hidden_widget_ids"`
}

type preferenceSaver interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// SaveLayoutPreferencesCommand persists per-user layout overrides.
type SaveLayoutPreferencesCommand struct {
	service   preferenceSaver
	telemetry Telemetry
}

// NewSaveLayoutPreferencesCommand creates the command.
func NewSaveLayoutPreferencesCommand(service preferenceSaver, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)

// Execute drops empty area orders and blank widget ids before saving.
func (c *SaveLayoutPreferencesCommand) Execute(ctx context.Context, msg SaveLayoutPreferencesInput) error {
	if c.service == nil {
		return errNoService
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences need a viewer user id")
	}
	overrides := dashboard.LayoutOverrides{
		AreaOrder:     make(map[string][]string, len(msg.AreaOrder)),
		HiddenWidgets: make(map[string]bool, len(msg.HiddenWidgets)),
	}
	for area, order := range msg.AreaOrder {
		if len(order) > 0 {
			overrides.AreaOrder[area] = order
		}
	}
	for _, id := range msg.HiddenWidgets {
		if id != "" {
			overrides.HiddenWidgets[id] = true
		}
	}
	if err := c.service.SavePreferences(ctx, msg.Viewer, overrides); err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventPreferencesSaved, map[string]any{
		"user_id": msg.Viewer.UserID,
		"areas":   len(overrides.AreaOrder),
		"hidden":  len(overrides.HiddenWidgets),
	})
	return nil
}

// SeedDashboardInput controls bootstrap behavior. SeedLayout is ignored when
// the command was built without a service.
type SeedDashboardInput struct {
	SeedLayout bool
}

// SeedDashboardCommand registers areas and definitions and optionally places
// the starter widgets.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

var _ gocommand.Querier[SeedDashboardInput, dashboard.SeedReport] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap and discards the report.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	_, err := c.Query(ctx, msg)
	return err
}

// Query runs the bootstrap and reports what it created.
func (c *SeedDashboardCommand) Query(ctx context.Context, msg SeedDashboardInput) (dashboard.SeedReport, error) {
	if c.store == nil {
		return dashboard.SeedReport{}, errors.New("seed command has no widget store")
	}
	var service *dashboard.Service
	if msg.SeedLayout {
		service = c.service
	}
	report, err := dashboard.Bootstrap(ctx, c.store, c.registry, service)
	if err != nil {
		return report, err
	}
	c.telemetry.Record(ctx, EventDashboardSeeded, map[string]any{
		"areas":       report.Areas,
		"definitions": report.Definitions,
		"widgets":     report.Widgets,
	})
	return report, nil
}
