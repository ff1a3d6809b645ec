package commands

import (
	"context"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

type widgetAdder interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) error
}

type widgetUpdater interface {
	UpdateWidget(ctx context.Context, widgetID string, req dashboard.UpdateWidgetRequest) error
}

type widgetRemover interface {
	RemoveWidget(ctx context.Context, widgetID string) error
}

type areaReorderer interface {
	ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error
}

// AssignWidgetCommand places a widget definition into a dashboard area.
type AssignWidgetCommand struct {
	service   widgetAdder
	telemetry Telemetry
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service widgetAdder, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

// Execute trims the codes, binds the requester to ctx and adds the widget.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errNoService
	}
	msg.DefinitionID = strings.TrimSpace(msg.DefinitionID)
	msg.AreaCode = strings.TrimSpace(msg.AreaCode)
	if msg.DefinitionID == "" {
		return fmt.Errorf("assign widget: %w", dashboard.ErrDefinitionRequired)
	}
	if msg.AreaCode == "" {
		return fmt.Errorf("assign widget %s: %w", msg.DefinitionID, dashboard.ErrAreaRequired)
	}
	ctx, meta := bindActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)
	if err := c.service.AddWidget(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventWidgetAssigned, map[string]any{
		"definition": msg.DefinitionID,
		"area":       msg.AreaCode,
		"actor_id":   meta.ActorID,
	})
	return nil
}

// UpdateWidgetInput replaces the configuration or metadata of one instance.
type UpdateWidgetInput struct {
	WidgetID      string         `json:"widget_id"`
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"metadata"`
	ActorID       string         `json:"actor_id"`
	UserID        string         `json:"user_id"`
	TenantID      string         `json:"tenant_id"`
}

// UpdateWidgetCommand wraps Service.UpdateWidget.
type UpdateWidgetCommand struct {
	service   widgetUpdater
	telemetry Telemetry
}

// NewUpdateWidgetCommand creates the command.
func NewUpdateWidgetCommand(service widgetUpdater, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute rejects payloads that would change nothing.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errNoService
	}
	if msg.WidgetID == "" {
		return dashboard.ErrWidgetIDRequired
	}
	if msg.Configuration == nil && msg.Metadata == nil {
		return fmt.Errorf("update widget %s: nothing to change", msg.WidgetID)
	}
	ctx, meta := bindActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)
	err := c.service.UpdateWidget(ctx, msg.WidgetID, dashboard.UpdateWidgetRequest{
		Configuration: msg.Configuration,
		Metadata:      msg.Metadata,
		ActorID:       meta.ActorID,
		UserID:        meta.UserID,
		TenantID:      meta.TenantID,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventWidgetUpdated, map[string]any{
		"widget_id": msg.WidgetID,
		"config":    msg.Configuration != nil,
		"metadata":  msg.Metadata != nil,
		"actor_id":  meta.ActorID,
	})
	return nil
}

// RemoveWidgetInput identifies the widget instance to remove.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// RemoveWidgetCommand wraps Service.RemoveWidget.
type RemoveWidgetCommand struct {
	service   widgetRemover
	telemetry Telemetry
}

// NewRemoveWidgetCommand builds a command instance.
func NewRemoveWidgetCommand(service widgetRemover, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errNoService
	}
	if msg.WidgetID == "" {
		return dashboard.ErrWidgetIDRequired
	}
	ctx, meta := bindActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)
	if err := c.service.RemoveWidget(ctx, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventWidgetRemoved, map[string]any{
		"widget_id": msg.WidgetID,
		"actor_id":  meta.ActorID,
	})
	return nil
}

// ReorderWidgetsInput lists the full new order of one area.
type ReorderWidgetsInput struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets.
type ReorderWidgetsCommand struct {
	service   areaReorderer
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service areaReorderer, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute refuses orders that name the same widget twice.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errNoService
	}
	if msg.AreaCode == "" {
		return fmt.Errorf("reorder: %w", dashboard.ErrAreaRequired)
	}
	seen := make(map[string]struct{}, len(msg.WidgetIDs))
	for _, id := range msg.WidgetIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder %s: widget %s listed twice", msg.AreaCode, id)
		}
		seen[id] = struct{}{}
	}
	if err := c.service.ReorderWidgets(ctx, msg.AreaCode, msg.WidgetIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, EventAreaReordered, map[string]any{
		"area":    msg.AreaCode,
		"widgets": len(msg.WidgetIDs),
	})
	return nil
}
