package dashboard

import (
	"context"
	"errors"

	"github.com/goliatone/go-pharmadash/pkg/activity"
)

var (
	// ErrAreaRequired is returned when a widget operation names no area.
	ErrAreaRequired = errors.New("dashboard: area code is required")
	// ErrUnknownArea is returned for area codes the dashboard does not render.
	ErrUnknownArea = errors.New("dashboard: unknown area")
	// ErrDefinitionRequired is returned when a widget is added without a definition.
	ErrDefinitionRequired = errors.New("dashboard: definition id is required")
	// ErrWidgetIDRequired is returned when an instance operation names no widget.
	ErrWidgetIDRequired = errors.New("dashboard: widget id is required")

	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errMissingAlertStore  = errors.New("dashboard: alert store not configured")
)

// Options configures the dashboard Service. Only WidgetStore is required for
// the widget operations and Alerts for the alert operations.
type Options struct {
	WidgetStore     WidgetStore
	Alerts          AlertStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	// Areas overrides the rendered areas and their order.
	Areas []string
}

// Service runs the pharmacy dashboard: widget placement, per-viewer layouts
// and alert resolution.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService fills unset collaborators with the in-process defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = RefreshHooks{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaCodes()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// change is one store mutation as seen by subscribers, telemetry and the
// activity feed.
type change struct {
	event      WidgetEvent
	objectType string
	objectID   string
	details    map[string]any
}

// publish tells the refresh hook first; a hook failure is returned and the
// change is not recorded anywhere else.
func (s *Service) publish(ctx context.Context, c change) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, c.event); err != nil {
		return err
	}
	payload := map[string]any{"object_id": c.objectID}
	if c.event.AreaCode != "" {
		payload["area"] = c.event.AreaCode
	}
	for k, v := range c.details {
		payload[k] = v
	}
	s.opts.Telemetry.Record(ctx, "dashboard."+c.event.Reason, payload)
	s.emitActivity(ctx, c, payload)
	return nil
}

// emitActivity never fails the operation; delivery errors only reach telemetry.
func (s *Service) emitActivity(ctx context.Context, c change, metadata map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	ids := ActivityFromContext(ctx)
	err := s.activity.Emit(ctx, activity.Event{
		Verb:       c.event.Reason,
		ActorID:    ids.ActorID,
		UserID:     ids.UserID,
		TenantID:   ids.TenantID,
		ObjectType: c.objectType,
		ObjectID:   c.objectID,
		Metadata:   metadata,
	})
	if err != nil {
		s.opts.Telemetry.Record(ctx, "dashboard.activity_failed", map[string]any{
			"verb":  c.event.Reason,
			"error": err.Error(),
		})
	}
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) alertStore() (AlertStore, error) {
	if s.opts.Alerts == nil {
		return nil, errMissingAlertStore
	}
	return s.opts.Alerts, nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}
