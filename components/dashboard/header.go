package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIntent is returned for header intents without a configured target.
var ErrUnknownIntent = errors.New("dashboard: unknown header intent")

// Header navigation intents.
const (
	IntentMessages = "messages"
	IntentAlerts   = "alerts"
	IntentSettings = "settings"
)

// Navigator is the routing capability the header needs.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f(ctx, path).
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// HeaderAction is an icon button in the top bar.
type HeaderAction struct {
	Intent string `json:"intent"`
	Icon   string `json:"icon"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Badge  int    `json:"badge,omitempty"`
}

// Header describes the top bar: a search box and icon-triggered intents.
type Header struct {
	SearchPlaceholder string
	Actions           []HeaderAction
}

// HeaderView is the render model for the top bar.
type HeaderView struct {
	SearchPlaceholder string         `json:"search_placeholder"`
	Query             string         `json:"query"`
	Actions           []HeaderAction `json:"actions"`
}

// DefaultHeader returns the pharmacy top bar.
func DefaultHeader() Header {
	return Header{
		SearchPlaceholder: "Search medicines, patients, orders...",
		Actions: []HeaderAction{
			{Intent: IntentMessages, Icon: "message-square", Label: "Messages", Path: "/messages"},
			{Intent: IntentAlerts, Icon: "bell", Label: "Alerts", Path: "/alerts"},
			{Intent: IntentSettings, Icon: "settings", Label: "Settings", Path: "/settings"},
		},
	}
}

// Target resolves the path for an intent.
func (h Header) Target(intent string) (string, error) {
	intent = strings.ToLower(strings.TrimSpace(intent))
	for _, action := range h.Actions {
		if action.Intent == intent && action.Path != "" {
			return action.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
}

// Trigger issues the navigation for intent.
func (h Header) Trigger(ctx context.Context, nav Navigator, intent string) error {
	if nav == nil {
		return errors.New("dashboard: navigator is required")
	}
	path, err := h.Target(intent)
	if err != nil {
		return err
	}
	return nav.Navigate(ctx, path)
}

// View builds the render model, applying badge counts keyed by intent.
func (h Header) View(query string, badges map[string]int) HeaderView {
	actions := make([]HeaderAction, len(h.Actions))
	copy(actions, h.Actions)
	for i := range actions {
		if count, ok := badges[actions[i].Intent]; ok {
			actions[i].Badge = count
		}
	}
	return HeaderView{
		SearchPlaceholder: h.SearchPlaceholder,
		Query:             strings.TrimSpace(query),
		Actions:           actions,
	}
}
