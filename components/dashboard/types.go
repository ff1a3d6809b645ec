package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-pharmadash/pkg/activity"
)

// WidgetStore persists areas, definitions and placed instances. Ensure calls
// report whether they created anything and are safe to repeat.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	UpdateInstance(ctx context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer decides per instance whether a viewer sees it, e.g. keeping the
// revenue card from technicians.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore keeps each viewer's order and hidden widgets.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry is the widget catalogue the service validates and fetches
// against.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook is told about every change so open pages and caches can react.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition is one region of the page.
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
}

// WidgetDefinition is a widget type. Schema, when set, is the JSON schema its
// instance configuration must satisfy.
type WidgetDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a definition placed in an area with its own
// configuration. Metadata["data"] carries provider output after layout.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CreateWidgetInstanceInput is a new, not yet placed, instance.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput replaces the configuration or metadata of an instance.
// Nil maps leave the stored value unchanged. Precondition, when set, runs
// against the stored instance before anything is written.
type UpdateWidgetInstanceInput struct {
	InstanceID    string
	Configuration map[string]any
	Metadata      map[string]any
	Precondition  func(current WidgetInstance) error
}

// WidgetVisibility limits an instance to viewers holding one of Roles and to
// the StartAt..EndAt window. Empty fields do not restrict.
type WidgetVisibility struct {
	Roles   []string
	StartAt *time.Time
	EndAt   *time.Time
}

// AssignWidgetInput places an instance in an area. A nil Position appends.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput is the new widget order of one area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput asks for the instances of an area visible to Audience roles.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

// ResolvedArea is an area's visible instances in display order.
type ResolvedArea struct {
	AreaCode string           `json:"area_code"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// LayoutOverrides is a viewer's saved order per area and set of hidden widgets.
type LayoutOverrides struct {
	AreaOrder     map[string][]string
	HiddenWidgets map[string]bool
}

// ViewerContext captures the active user and request information needed to render dashboards.
// CurrentPath drives route-based sidebar highlighting, Query is the header search text.
type ViewerContext struct {
	UserID      string
	Roles       []string
	Locale      string
	CurrentPath string
	Query       string
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
}

// WidgetEvent reasons. Store changes reuse the activity verbs so refresh
// subscribers and the activity feed speak the same names.
const (
	ReasonAdded         = activity.VerbWidgetAdded
	ReasonRemoved       = activity.VerbWidgetRemoved
	ReasonUpdated       = activity.VerbWidgetUpdated
	ReasonReordered     = activity.VerbAreaReordered
	ReasonAlertResolved = activity.VerbAlertResolved
	ReasonRefresh       = "refresh"
)

// WidgetEvent describes a change refresh subscribers redraw on.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
}
