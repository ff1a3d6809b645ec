package httpapi

import (
	"context"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-pharmadash/components/dashboard"
	"github.com/goliatone/go-pharmadash/components/dashboard/commands"
)

// Executor is the command surface the HTTP transports call into.
type Executor interface {
	Assign(ctx context.Context, req dashboard.AddWidgetRequest) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Update(ctx context.Context, input commands.UpdateWidgetInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error
	TakeAlertAction(ctx context.Context, input commands.TakeAlertActionInput) error
}

// CommandExecutor adapts go-command commanders to Executor. Nil commanders
// fail with ErrNotConfigured.
type CommandExecutor struct {
	AssignCommander      gocommand.Commander[dashboard.AddWidgetRequest]
	RemoveCommander      gocommand.Commander[commands.RemoveWidgetInput]
	UpdateCommander      gocommand.Commander[commands.UpdateWidgetInput]
	ReorderCommander     gocommand.Commander[commands.ReorderWidgetsInput]
	RefreshCommander     gocommand.Commander[commands.RefreshWidgetInput]
	PreferencesCommander gocommand.Commander[commands.SaveLayoutPreferencesInput]
	AlertCommander       gocommand.Commander[commands.TakeAlertActionInput]
}

// ErrNotConfigured is returned when an endpoint has no command behind it.
var ErrNotConfigured = errors.New("httpapi: command not configured")

var _ Executor = (*CommandExecutor)(nil)

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return ErrNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Assign(ctx context.Context, req dashboard.AddWidgetRequest) error {
	return execute(ctx, e.AssignCommander, req)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) Update(ctx context.Context, input commands.UpdateWidgetInput) error {
	return execute(ctx, e.UpdateCommander, input)
}

func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCommander, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	return execute(ctx, e.RefreshCommander, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error {
	return execute(ctx, e.PreferencesCommander, input)
}

func (e *CommandExecutor) TakeAlertAction(ctx context.Context, input commands.TakeAlertActionInput) error {
	return execute(ctx, e.AlertCommander, input)
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrAlertNotFound),
		errors.Is(err, dashboard.ErrUnknownArea):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrAlertIDRequired),
		errors.Is(err, dashboard.ErrAreaRequired),
		errors.Is(err, dashboard.ErrDefinitionRequired),
		errors.Is(err, dashboard.ErrWidgetIDRequired),
		errors.Is(err, dashboard.ErrNoAlert),
		errors.Is(err, dashboard.ErrUnknownIntent):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrDialogClosed):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
