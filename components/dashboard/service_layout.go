package dashboard

import (
	"context"
	"errors"
)

// ConfigureLayout resolves every area for the viewer. Widgets the viewer may
// not see are dropped, provider data is attached under Metadata["data"], and
// the viewer's saved order and hidden set are applied last.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance, len(s.opts.Areas))}
	for _, area := range s.opts.Areas {
		widgets, err := s.viewerWidgets(ctx, store, viewer, area)
		if err != nil {
			return Layout{}, err
		}
		layout.Areas[area] = arrange(widgets, overrides.AreaOrder[area], overrides.HiddenWidgets)
	}
	s.opts.Telemetry.Record(ctx, "dashboard.layout_resolved", map[string]any{"viewer": viewer.UserID})
	return layout, nil
}

// ResolveArea resolves one area without applying layout preferences.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	widgets, err := s.viewerWidgets(ctx, store, viewer, areaCode)
	if err != nil {
		return ResolvedArea{}, err
	}
	return ResolvedArea{AreaCode: areaCode, Widgets: widgets}, nil
}

func (s *Service) viewerWidgets(ctx context.Context, store WidgetStore, viewer ViewerContext, area string) ([]WidgetInstance, error) {
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: area,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return nil, err
	}
	visible := make([]WidgetInstance, 0, len(resolved.Widgets))
	for _, w := range resolved.Widgets {
		w.AreaCode = area
		if !s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			continue
		}
		visible = append(visible, s.withProviderData(ctx, viewer, w))
	}
	return visible, nil
}

// withProviderData leaves the widget without data when its provider fails so
// one broken card does not blank the page.
func (s *Service) withProviderData(ctx context.Context, viewer ViewerContext, w WidgetInstance) WidgetInstance {
	provider, ok := s.opts.Providers.Provider(w.DefinitionID)
	if !ok || provider == nil {
		return w
	}
	data, err := provider.Fetch(ctx, WidgetContext{Instance: w, Viewer: viewer})
	if err != nil {
		s.opts.Telemetry.Record(ctx, "dashboard.provider_failed", map[string]any{
			"definition": w.DefinitionID,
			"widget_id":  w.ID,
			"error":      err.Error(),
		})
		return w
	}
	meta := make(map[string]any, len(w.Metadata)+1)
	for k, v := range w.Metadata {
		meta[k] = v
	}
	meta["data"] = data
	w.Metadata = meta
	return w
}

// arrange puts the widgets named in order first, in that order, keeps the
// rest in store order and drops hidden ones. Unknown and repeated ids in
// order are ignored.
func arrange(widgets []WidgetInstance, order []string, hidden map[string]bool) []WidgetInstance {
	placed := make(map[string]bool, len(order))
	out := make([]WidgetInstance, 0, len(widgets))
	if len(order) > 0 {
		byID := make(map[string]WidgetInstance, len(widgets))
		for _, w := range widgets {
			byID[w.ID] = w
		}
		for _, id := range order {
			w, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			placed[id] = true
			if !hidden[id] {
				out = append(out, w)
			}
		}
	}
	for _, w := range widgets {
		if !placed[w.ID] && !hidden[w.ID] {
			out = append(out, w)
		}
	}
	return out
}

// SavePreferences stores the viewer's layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errors.New("dashboard: viewer context missing user id")
	}
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
	return s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides)
}
