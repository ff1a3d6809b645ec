package dashboard

import (
	"context"
	"errors"
)

// ErrNoAlert is returned when confirming a dialog that holds no alert.
var ErrNoAlert = errors.New("dashboard: alert dialog has no alert")

// AlertActionFunc receives the alert id and the notes typed in the dialog.
type AlertActionFunc func(ctx context.Context, alertID, notes string) error

// AlertDialog is the alert-resolution modal. It owns the notes field for the
// lifetime of an open alert; every Open starts from empty notes.
type AlertDialog struct {
	alert        *Alert
	open         bool
	notes        string
	onTakeAction AlertActionFunc
	onClose      func()
}

// NewAlertDialog builds a closed dialog wired to the caller callbacks.
func NewAlertDialog(onTakeAction AlertActionFunc, onClose func()) *AlertDialog {
	return &AlertDialog{onTakeAction: onTakeAction, onClose: onClose}
}

// AlertDialogView is the render model of an open dialog.
type AlertDialogView struct {
	Alert Alert     `json:"alert"`
	Icon  AlertIcon `json:"icon"`
	Notes string    `json:"notes"`
}

// Open shows the dialog for alert and resets the notes field.
func (d *AlertDialog) Open(alert Alert) {
	a := alert
	d.alert = &a
	d.open = true
	d.notes = ""
}

// IsOpen reports whether the dialog is shown.
func (d *AlertDialog) IsOpen() bool {
	return d.open
}

// Alert returns the alert held by the dialog.
func (d *AlertDialog) Alert() (Alert, bool) {
	if d.alert == nil {
		return Alert{}, false
	}
	return *d.alert, true
}

// SetNotes replaces the notes text, one call per edit.
func (d *AlertDialog) SetNotes(notes string) {
	d.notes = notes
}

// Notes returns the current notes text.
func (d *AlertDialog) Notes() string {
	return d.notes
}

// Confirm hands the alert id and notes to the action callback, clears the
// notes and closes the dialog. A failing callback leaves the dialog untouched.
func (d *AlertDialog) Confirm(ctx context.Context) error {
	if d.alert == nil {
		return ErrNoAlert
	}
	if d.onTakeAction != nil {
		if err := d.onTakeAction(ctx, d.alert.ID, d.notes); err != nil {
			return err
		}
	}
	d.notes = ""
	d.close()
	return nil
}

// Cancel closes the dialog without taking action.
func (d *AlertDialog) Cancel() {
	d.close()
}

// View returns the render model; ok is false when nothing should be shown.
func (d *AlertDialog) View() (AlertDialogView, bool) {
	if !d.open || d.alert == nil {
		return AlertDialogView{}, false
	}
	return AlertDialogView{
		Alert: *d.alert,
		Icon:  AlertIconFor(d.alert.Type),
		Notes: d.notes,
	}, true
}

func (d *AlertDialog) close() {
	d.open = false
	if d.onClose != nil {
		d.onClose()
	}
}
