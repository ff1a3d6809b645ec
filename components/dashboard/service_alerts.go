package dashboard

import (
	"context"

	"github.com/goliatone/go-pharmadash/pkg/activity"
)

// OpenAlerts lists unresolved alerts.
func (s *Service) OpenAlerts(ctx context.Context) ([]Alert, error) {
	alerts, err := s.alertStore()
	if err != nil {
		return nil, err
	}
	return alerts.OpenAlerts(ctx)
}

// OpenAlertCount feeds the alert badges. Stores that can count without
// listing are asked directly.
func (s *Service) OpenAlertCount(ctx context.Context) (int, error) {
	alerts, err := s.alertStore()
	if err != nil {
		return 0, err
	}
	if counter, ok := alerts.(interface {
		OpenCount(ctx context.Context) (int, error)
	}); ok {
		return counter.OpenCount(ctx)
	}
	open, err := alerts.OpenAlerts(ctx)
	return len(open), err
}

// Alert fetches a single alert.
func (s *Service) Alert(ctx context.Context, alertID string) (Alert, error) {
	alerts, err := s.alertStore()
	if err != nil {
		return Alert{}, err
	}
	return alerts.Alert(ctx, alertID)
}

// TakeAlertAction resolves the alert and tells refresh subscribers that the
// alerts area changed. The resolution is returned even when a subscriber
// fails, since the alert is already resolved at that point.
func (s *Service) TakeAlertAction(ctx context.Context, alertID, notes string) (AlertResolution, error) {
	alerts, err := s.alertStore()
	if err != nil {
		return AlertResolution{}, err
	}
	resolution, err := alerts.TakeAction(ctx, alertID, notes)
	if err != nil {
		return AlertResolution{}, err
	}
	err = s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: AreaAlerts,
		Instance: WidgetInstance{
			DefinitionID: WidgetAlerts,
			Metadata:     map[string]any{"alert_id": alertID, "resolution_id": resolution.ID},
		},
		Reason: ReasonAlertResolved,
	})
	if err != nil {
		return resolution, err
	}
	s.opts.Telemetry.Record(ctx, "dashboard."+ReasonAlertResolved, map[string]any{
		"object_id": alertID,
		"type":      activity.ObjectAlert,
		"has_notes": notes != "",
	})
	return resolution, nil
}
