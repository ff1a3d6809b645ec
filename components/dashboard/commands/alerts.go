package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
	"github.com/goliatone/go-pharmadash/pkg/activity"
)

// TakeAlertActionInput resolves an alert with the notes typed in the dialog.
type TakeAlertActionInput struct {
	AlertID  string `json:"alert_id"`
	Notes    string `json:"notes"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type alertActionService interface {
	TakeAlertAction(ctx context.Context, alertID, notes string) (dashboard.AlertResolution, error)
}

// ActivityEmitter publishes activity events.
type ActivityEmitter interface {
	Emit(ctx context.Context, evt activity.Event) error
}

// TakeAlertActionCommand resolves alerts and records an activity event.
type TakeAlertActionCommand struct {
	service   alertActionService
	activity  ActivityEmitter
	telemetry Telemetry
}

// NewTakeAlertActionCommand builds the command. emitter may be nil.
func NewTakeAlertActionCommand(service alertActionService, emitter ActivityEmitter, telemetry Telemetry) *TakeAlertActionCommand {
	return &TakeAlertActionCommand{service: service, activity: emitter, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TakeAlertActionInput] = (*TakeAlertActionCommand)(nil)

// Execute resolves the alert. Identifiers missing from msg are taken from the
// activity context already on ctx. Once the alert is resolved an activity
// delivery failure is only recorded, so callers never resolve it twice.
func (c *TakeAlertActionCommand) Execute(ctx context.Context, msg TakeAlertActionInput) error {
	if c.service == nil {
		return errNoService
	}
	if msg.AlertID == "" {
		return dashboard.ErrAlertIDRequired
	}
	ctx, meta := bindActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)

	resolution, err := c.service.TakeAlertAction(ctx, msg.AlertID, msg.Notes)
	if err != nil {
		return err
	}
	if c.activity != nil {
		if err := c.activity.Emit(ctx, activity.Event{
			Verb:           activity.VerbAlertResolved,
			ActorID:        meta.ActorID,
			UserID:         meta.UserID,
			TenantID:       meta.TenantID,
			ObjectType:     activity.ObjectAlert,
			ObjectID:       msg.AlertID,
			DefinitionCode: "pharmacy.alert.resolve",
			Metadata: map[string]any{
				"resolution_id": resolution.ID,
				"notes":         msg.Notes,
			},
			OccurredAt: resolution.ResolvedAt,
		}); err != nil {
			c.telemetry.Record(ctx, EventActivityFailed, map[string]any{
				"verb":     activity.VerbAlertResolved,
				"alert_id": msg.AlertID,
				"error":    err.Error(),
			})
		}
	}
	c.telemetry.Record(ctx, EventAlertResolved, map[string]any{
		"alert_id":      msg.AlertID,
		"resolution_id": resolution.ID,
	})
	return nil
}
