package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-pharmadash/pkg/activity"
)

// AddWidgetRequest places a widget definition into an area.
type AddWidgetRequest struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	StartAt       *time.Time     `json:"start_at,omitempty"`
	EndAt         *time.Time     `json:"end_at,omitempty"`
	ActorID       string         `json:"actor_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	TenantID      string         `json:"tenant_id,omitempty"`
}

// AddWidget validates the configuration against the definition schema, then
// creates and assigns the instance.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	switch {
	case req.AreaCode == "":
		return ErrAreaRequired
	case req.DefinitionID == "":
		return ErrDefinitionRequired
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	ctx = withActivityIDs(ctx, req.ActorID, req.UserID, req.TenantID)

	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility:    WidgetVisibility{Roles: req.Roles, StartAt: req.StartAt, EndAt: req.EndAt},
		Metadata:      map[string]any{"user_id": req.UserID},
	})
	if err != nil {
		return err
	}
	err = store.AssignInstance(ctx, AssignWidgetInput{AreaCode: req.AreaCode, InstanceID: instance.ID, Position: req.Position})
	if err != nil {
		return err
	}
	instance.AreaCode = req.AreaCode
	return s.publish(ctx, change{
		event:      WidgetEvent{AreaCode: req.AreaCode, Instance: instance, Reason: ReasonAdded},
		objectType: activity.ObjectWidget,
		objectID:   instance.ID,
		details:    map[string]any{"definition": req.DefinitionID},
	})
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return ErrWidgetIDRequired
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	return s.publish(ctx, change{
		event:      WidgetEvent{Instance: WidgetInstance{ID: widgetID}, Reason: ReasonRemoved},
		objectType: activity.ObjectWidget,
		objectID:   widgetID,
	})
}

// UpdateWidgetRequest replaces the configuration or metadata of an instance.
// A nil map leaves the stored value alone.
type UpdateWidgetRequest struct {
	Configuration map[string]any
	Metadata      map[string]any
	ActorID       string
	UserID        string
	TenantID      string
}

// UpdateWidget validates a new configuration against the schema of the
// stored instance's definition before writing.
func (s *Service) UpdateWidget(ctx context.Context, widgetID string, req UpdateWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return ErrWidgetIDRequired
	}
	ctx = withActivityIDs(ctx, req.ActorID, req.UserID, req.TenantID)

	input := UpdateWidgetInstanceInput{
		InstanceID:    widgetID,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
	}
	if req.Configuration != nil {
		input.Precondition = func(current WidgetInstance) error {
			return s.validateConfiguration(current.DefinitionID, req.Configuration)
		}
	}
	instance, err := store.UpdateInstance(ctx, input)
	if err != nil {
		return err
	}
	return s.publish(ctx, change{
		event:      WidgetEvent{AreaCode: instance.AreaCode, Instance: instance, Reason: ReasonUpdated},
		objectType: activity.ObjectWidget,
		objectID:   widgetID,
		details:    map[string]any{"definition": instance.DefinitionID},
	})
}

// ReorderWidgets stores a new widget order for one area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return ErrAreaRequired
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{AreaCode: areaCode, WidgetIDs: widgetIDs}); err != nil {
		return err
	}
	return s.publish(ctx, change{
		event:      WidgetEvent{AreaCode: areaCode, Reason: ReasonReordered},
		objectType: activity.ObjectArea,
		objectID:   areaCode,
		details:    map[string]any{"count": len(widgetIDs)},
	})
}

// NotifyWidgetUpdated pushes an event to the refresh hook without touching
// the store.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "dashboard.notify", map[string]any{
		"area":      event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}
