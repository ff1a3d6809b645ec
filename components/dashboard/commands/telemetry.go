package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Event names recorded by the commands in this package.
const (
	EventWidgetAssigned   = "pharmadash.command.widget_assigned"
	EventWidgetUpdated    = "pharmadash.command.widget_updated"
	EventWidgetRemoved    = "pharmadash.command.widget_removed"
	EventAreaReordered    = "pharmadash.command.area_reordered"
	EventWidgetRefreshed  = "pharmadash.command.widget_refreshed"
	EventPreferencesSaved = "pharmadash.command.preferences_saved"
	EventDashboardSeeded  = "pharmadash.command.dashboard_seeded"
	EventAlertResolved    = "pharmadash.command.alert_resolved"
	EventDialogOpened     = "pharmadash.command.dialog_opened"
	EventDialogConfirmed  = "pharmadash.command.dialog_confirmed"
	EventDialogCancelled  = "pharmadash.command.dialog_cancelled"
	EventActivityFailed   = "dashboard.activity_failed"
)

var errNoService = errors.New("command has no dashboard service")

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// bindActor layers the non-empty identifiers over the ones already on ctx.
func bindActor(ctx context.Context, actorID, userID, tenantID string) (context.Context, dashboard.ActivityContext) {
	meta := dashboard.ActivityFromContext(ctx)
	if actorID != "" {
		meta.ActorID = actorID
	}
	if userID != "" {
		meta.UserID = userID
	}
	if tenantID != "" {
		meta.TenantID = tenantID
	}
	if meta.ActorID == "" {
		meta.ActorID = meta.UserID
	}
	return dashboard.ContextWithActivity(ctx, meta), meta
}
