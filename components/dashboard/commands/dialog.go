package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// OpenAlertDialogInput opens the alert dialog for a viewer.
type OpenAlertDialogInput struct {
	Viewer  dashboard.ViewerContext
	AlertID string
}

// UpdateDialogNotesInput carries one notes edit.
type UpdateDialogNotesInput struct {
	Viewer dashboard.ViewerContext
	Notes  string
}

// ConfirmAlertDialogInput confirms the viewer's open dialog. When Notes is set
// it replaces the dialog notes first, which is how a plain form submit
// delivers the final text.
type ConfirmAlertDialogInput struct {
	Viewer dashboard.ViewerContext
	Notes  *string
}

// CancelAlertDialogInput dismisses the viewer's dialog.
type CancelAlertDialogInput struct {
	Viewer dashboard.ViewerContext
}

type alertFinder interface {
	Alert(ctx context.Context, alertID string) (dashboard.Alert, error)
}

// DialogCommands drives per-viewer alert dialogs.
type DialogCommands struct {
	Open    *OpenAlertDialogCommand
	Notes   *UpdateDialogNotesCommand
	Confirm *ConfirmAlertDialogCommand
	Cancel  *CancelAlertDialogCommand
}

// NewDialogCommands wires every dialog command to the same sessions.
func NewDialogCommands(alerts alertFinder, sessions *dashboard.DialogSessions, telemetry Telemetry) DialogCommands {
	telemetry = normalizeTelemetry(telemetry)
	return DialogCommands{
		Open:    &OpenAlertDialogCommand{alerts: alerts, sessions: sessions, telemetry: telemetry},
		Notes:   &UpdateDialogNotesCommand{sessions: sessions},
		Confirm: &ConfirmAlertDialogCommand{sessions: sessions, telemetry: telemetry},
		Cancel:  &CancelAlertDialogCommand{sessions: sessions, telemetry: telemetry},
	}
}

var errMissingSessions = errors.New("dialog command requires dialog sessions")

// OpenAlertDialogCommand loads the alert and opens the dialog with empty notes.
type OpenAlertDialogCommand struct {
	alerts    alertFinder
	sessions  *dashboard.DialogSessions
	telemetry Telemetry
}

var _ gocommand.Commander[OpenAlertDialogInput] = (*OpenAlertDialogCommand)(nil)

// Execute opens the dialog.
func (c *OpenAlertDialogCommand) Execute(ctx context.Context, msg OpenAlertDialogInput) error {
	if c.sessions == nil {
		return errMissingSessions
	}
	if c.alerts == nil {
		return errors.New("open dialog command requires alert lookup")
	}
	if msg.AlertID == "" {
		return dashboard.ErrAlertIDRequired
	}
	alert, err := c.alerts.Alert(ctx, msg.AlertID)
	if err != nil {
		return err
	}
	c.sessions.Open(msg.Viewer, alert)
	c.telemetry.Record(ctx, EventDialogOpened, map[string]any{
		"alert_id": alert.ID,
		"type":     string(alert.Type),
	})
	return nil
}

// UpdateDialogNotesCommand applies a notes edit.
type UpdateDialogNotesCommand struct {
	sessions *dashboard.DialogSessions
}

var _ gocommand.Commander[UpdateDialogNotesInput] = (*UpdateDialogNotesCommand)(nil)

// Execute stores the notes.
func (c *UpdateDialogNotesCommand) Execute(_ context.Context, msg UpdateDialogNotesInput) error {
	if c.sessions == nil {
		return errMissingSessions
	}
	return c.sessions.SetNotes(msg.Viewer, msg.Notes)
}

// ConfirmAlertDialogCommand runs the dialog action for the viewer.
type ConfirmAlertDialogCommand struct {
	sessions  *dashboard.DialogSessions
	telemetry Telemetry
}

var _ gocommand.Commander[ConfirmAlertDialogInput] = (*ConfirmAlertDialogCommand)(nil)

// Execute confirms the dialog. The viewer becomes the acting user.
func (c *ConfirmAlertDialogCommand) Execute(ctx context.Context, msg ConfirmAlertDialogInput) error {
	if c.sessions == nil {
		return errMissingSessions
	}
	if msg.Notes != nil {
		if err := c.sessions.SetNotes(msg.Viewer, *msg.Notes); err != nil {
			return err
		}
	}
	meta := dashboard.ActivityFromContext(ctx)
	if meta.UserID == "" {
		meta.UserID = msg.Viewer.UserID
	}
	if meta.ActorID == "" {
		meta.ActorID = msg.Viewer.UserID
	}
	ctx = dashboard.ContextWithActivity(ctx, meta)
	alertID, err := c.sessions.Confirm(ctx, msg.Viewer)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventDialogConfirmed, map[string]any{"alert_id": alertID})
	return nil
}

// CancelAlertDialogCommand closes the dialog without acting.
type CancelAlertDialogCommand struct {
	sessions  *dashboard.DialogSessions
	telemetry Telemetry
}

var _ gocommand.Commander[CancelAlertDialogInput] = (*CancelAlertDialogCommand)(nil)

// Execute closes the dialog.
func (c *CancelAlertDialogCommand) Execute(ctx context.Context, msg CancelAlertDialogInput) error {
	if c.sessions == nil {
		return errMissingSessions
	}
	c.sessions.Cancel(msg.Viewer)
	c.telemetry.Record(ctx, EventDialogCancelled, map[string]any{"user_id": msg.Viewer.UserID})
	return nil
}
