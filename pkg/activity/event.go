package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Verbs recorded by the pharmacy dashboard.
const (
	VerbWidgetAdded   = "widget.added"
	VerbWidgetRemoved = "widget.removed"
	VerbWidgetUpdated = "widget.updated"
	VerbAreaReordered = "area.reordered"
	VerbAlertResolved = "alert.resolved"
)

// Object types the verbs apply to.
const (
	ObjectWidget = "widget_instance"
	ObjectArea   = "widget_area"
	ObjectAlert  = "alert"
)

// Event is an auditable action taken from the dashboard, e.g. an alert being
// resolved from the alert dialog.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify calls f(ctx, evt).
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every hook.
type Hooks []Hook

// Notify normalizes evt and delivers it to each hook. Events without a verb,
// object type or object id are dropped. Hook errors are joined.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if !evt.valid() {
		return nil
	}
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		errs = errors.Join(errs, hook.Notify(ctx, evt))
	}
	return errs
}

// NormalizeEvent trims identifiers and clones the mutable fields.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	if evt.Metadata != nil {
		meta := make(map[string]any, len(evt.Metadata))
		for k, v := range evt.Metadata {
			meta[k] = v
		}
		evt.Metadata = meta
	}
	if evt.Recipients != nil {
		evt.Recipients = append([]string(nil), evt.Recipients...)
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

func (e Event) valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// CaptureHook keeps every event it receives. Useful in tests and local runs.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify appends evt.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}
