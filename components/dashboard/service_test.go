package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfigureLayoutPerViewer(t *testing.T) {
	stats := []WidgetInstance{
		{ID: "w1", DefinitionID: WidgetStats},
		{ID: "w2", DefinitionID: WidgetStats},
		{ID: "w3", DefinitionID: WidgetStats},
	}
	cases := []struct {
		name      string
		auth      Authorizer
		overrides *LayoutOverrides
		want      []string
	}{
		{name: "store order", want: []string{"w1", "w2", "w3"}},
		{
			name: "authorizer filters",
			auth: allowListAuthorizer{allowed: map[string]bool{"w2": true}},
			want: []string{"w2"},
		},
		{
			name:      "saved order first",
			overrides: &LayoutOverrides{AreaOrder: map[string][]string{AreaStats: {"w3", "w1"}}},
			want:      []string{"w3", "w1", "w2"},
		},
		{
			name: "hidden dropped",
			overrides: &LayoutOverrides{
				AreaOrder:     map[string][]string{AreaStats: {"w2", "w1"}},
				HiddenWidgets: map[string]bool{"w1": true},
			},
			want: []string{"w2", "w3"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := NewInMemoryPreferenceStore()
			viewer := ViewerContext{UserID: "pharmacist-1"}
			if tc.overrides != nil {
				if err := prefs.SaveLayoutOverrides(context.Background(), viewer, *tc.overrides); err != nil {
					t.Fatalf("SaveLayoutOverrides: %v", err)
				}
			}
			service := NewService(Options{
				WidgetStore:     &fakeWidgetStore{resolved: map[string][]WidgetInstance{AreaStats: stats}},
				Authorizer:      tc.auth,
				PreferenceStore: prefs,
			})
			layout, err := service.ConfigureLayout(context.Background(), viewer)
			if err != nil {
				t.Fatalf("ConfigureLayout returned error: %v", err)
			}
			if got := widgetIDs(layout.Areas[AreaStats]); !equalIDs(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for _, area := range DefaultAreaCodes() {
				if _, ok := layout.Areas[area]; !ok {
					t.Fatalf("expected area %s in layout", area)
				}
			}
		})
	}
}

func TestConfigureLayoutAttachesProviderData(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterProvider(WidgetStats, ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		return WidgetData{"viewer": meta.Viewer.UserID, "area": meta.Instance.AreaCode}, nil
	}))
	registry.RegisterProvider(WidgetAlerts, ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return nil, errors.New("backend offline")
	}))
	telemetry := &recordingTelemetry{}
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{resolved: map[string][]WidgetInstance{
			AreaStats:  {{ID: "w1", DefinitionID: WidgetStats, Metadata: map[string]any{"pinned": true}}},
			AreaAlerts: {{ID: "w2", DefinitionID: WidgetAlerts}},
		}},
		Providers: registry,
		Telemetry: telemetry,
	})

	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "tech-2"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	stats := layout.Areas[AreaStats][0]
	data, ok := stats.Metadata["data"].(WidgetData)
	if !ok || data["viewer"] != "tech-2" || data["area"] != AreaStats {
		t.Fatalf("expected provider data, got %+v", stats.Metadata)
	}
	if stats.Metadata["pinned"] != true {
		t.Fatalf("expected stored metadata kept, got %+v", stats.Metadata)
	}
	alerts := layout.Areas[AreaAlerts]
	if len(alerts) != 1 || alerts[0].Metadata["data"] != nil {
		t.Fatalf("expected failed provider to leave widget without data, got %+v", alerts)
	}
	found := false
	for _, e := range telemetry.events {
		found = found || e == "dashboard.provider_failed"
	}
	if !found {
		t.Fatalf("expected provider failure telemetry, got %v", telemetry.events)
	}
}

func TestArrange(t *testing.T) {
	widgets := []WidgetInstance{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := widgetIDs(arrange(widgets, []string{"c", "ghost", "c", "a"}, map[string]bool{"b": true}))
	if !equalIDs(got, []string{"c", "a"}) {
		t.Fatalf("unexpected arrangement %v", got)
	}
	got = widgetIDs(arrange(widgets, nil, nil))
	if !equalIDs(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected store order without overrides, got %v", got)
	}
}

func TestResolveAreaSkipsPreferences(t *testing.T) {
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "pharmacist-1"}
	_ = prefs.SaveLayoutOverrides(context.Background(), viewer, LayoutOverrides{
		HiddenWidgets: map[string]bool{"w1": true},
	})
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{resolved: map[string][]WidgetInstance{
			AreaActions: {{ID: "w1", DefinitionID: WidgetQuickActions}},
		}},
		PreferenceStore: prefs,
	})
	area, err := service.ResolveArea(context.Background(), viewer, AreaActions)
	if err != nil {
		t.Fatalf("ResolveArea returned error: %v", err)
	}
	if len(area.Widgets) != 1 || area.Widgets[0].AreaCode != AreaActions {
		t.Fatalf("unexpected area %+v", area)
	}
}

func TestAddWidgetEmitsRefreshHook(t *testing.T) {
	store := &fakeWidgetStore{
		createInstanceFn: func(input CreateWidgetInstanceInput) (WidgetInstance, error) {
			return WidgetInstance{ID: "instance-1", DefinitionID: input.DefinitionID}, nil
		},
	}
	hook := &collectingHook{}
	service := NewService(Options{WidgetStore: store, RefreshHook: hook})
	position := 0
	now := time.Now().UTC()
	err := service.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID:  WidgetStats,
		AreaCode:      AreaStats,
		Configuration: map[string]any{"metrics": []string{"prescriptions", "revenue"}},
		Position:      &position,
		Roles:         []string{"pharmacist"},
		StartAt:       &now,
	})
	if err != nil {
		t.Fatalf("AddWidget returned error: %v", err)
	}
	if hook.events != 1 || hook.last.Reason != ReasonAdded || hook.last.Instance.AreaCode != AreaStats {
		t.Fatalf("unexpected refresh event %+v", hook.last)
	}
	if len(store.assignCalls) != 1 || *store.assignCalls[0].Position != 0 {
		t.Fatalf("expected position passed to the store, got %+v", store.assignCalls)
	}
}

func TestRefreshHookFailureStopsPublish(t *testing.T) {
	telemetry := &recordingTelemetry{}
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{},
		Telemetry:   telemetry,
		RefreshHook: RefreshHookFunc(func(context.Context, WidgetEvent) error {
			return errors.New("subscriber gone")
		}),
	})
	if err := service.RemoveWidget(context.Background(), "w1"); err == nil {
		t.Fatalf("expected hook error")
	}
	if len(telemetry.events) != 0 {
		t.Fatalf("expected nothing recorded after hook failure, got %v", telemetry.events)
	}
}

func widgetIDs(widgets []WidgetInstance) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type fakeWidgetStore struct {
	ensureAreaFn      func(def WidgetAreaDefinition) error
	ensureDefinition  func(def WidgetDefinition) error
	createInstanceFn  func(input CreateWidgetInstanceInput) (WidgetInstance, error)
	assignInstanceFn  func(input AssignWidgetInput) error
	reorderAreaFn     func(input ReorderAreaInput) error
	resolveAreaFn     func(input ResolveAreaInput) (ResolvedArea, error)
	resolved          map[string][]WidgetInstance
	instances         map[string]WidgetInstance
	assignCalls       []AssignWidgetInput
	reorderCalls      []ReorderAreaInput
	createdDefinition []string
}

func (f *fakeWidgetStore) EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error) {
	if f.ensureAreaFn != nil {
		return true, f.ensureAreaFn(def)
	}
	return true, nil
}

func (f *fakeWidgetStore) EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error) {
	if f.ensureDefinition != nil {
		return true, f.ensureDefinition(def)
	}
	f.createdDefinition = append(f.createdDefinition, def.Code)
	return true, nil
}

func (f *fakeWidgetStore) CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if f.createInstanceFn != nil {
		return f.createInstanceFn(input)
	}
	return WidgetInstance{ID: input.DefinitionID + "-instance", DefinitionID: input.DefinitionID}, nil
}

func (f *fakeWidgetStore) DeleteInstance(context.Context, string) error { return nil }

func (f *fakeWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	current, ok := f.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, errors.New("widget not found")
	}
	if input.Precondition != nil {
		if err := input.Precondition(current); err != nil {
			return WidgetInstance{}, err
		}
	}
	if input.Configuration != nil {
		current.Configuration = input.Configuration
	}
	if input.Metadata != nil {
		current.Metadata = input.Metadata
	}
	f.instances[input.InstanceID] = current
	return current, nil
}

func (f *fakeWidgetStore) AssignInstance(ctx context.Context, input AssignWidgetInput) error {
	f.assignCalls = append(f.assignCalls, input)
	if f.assignInstanceFn != nil {
		return f.assignInstanceFn(input)
	}
	return nil
}

func (f *fakeWidgetStore) ReorderArea(ctx context.Context, input ReorderAreaInput) error {
	f.reorderCalls = append(f.reorderCalls, input)
	if f.reorderAreaFn != nil {
		return f.reorderAreaFn(input)
	}
	return nil
}

func (f *fakeWidgetStore) ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	if f.resolveAreaFn != nil {
		return f.resolveAreaFn(input)
	}
	if widgets, ok := f.resolved[input.AreaCode]; ok {
		return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: []WidgetInstance{}}, nil
}

type allowListAuthorizer struct {
	allowed map[string]bool
}

func (a allowListAuthorizer) CanViewWidget(_ context.Context, _ ViewerContext, instance WidgetInstance) bool {
	return a.allowed[instance.ID]
}

type collectingHook struct {
	events int
	last   WidgetEvent
}

func (h *collectingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.events++
	h.last = event
	return nil
}

var _ RefreshHook = (*collectingHook)(nil)

func TestNotifyWidgetUpdatedTelemetry(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{
		WidgetStore: NewInMemoryWidgetStoreStub(),
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
	event := WidgetEvent{AreaCode: AreaStats, Instance: WidgetInstance{ID: "w1"}, Reason: "custom"}
	if err := service.NotifyWidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("NotifyWidgetUpdated returned error: %v", err)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry recorded event")
	}
}

// NewInMemoryWidgetStoreStub returns a store that supports Notify tests.
func NewInMemoryWidgetStoreStub() WidgetStore {
	return &fakeWidgetStore{
		createInstanceFn: func(input CreateWidgetInstanceInput) (WidgetInstance, error) {
			return WidgetInstance{ID: input.DefinitionID}, nil
		},
		assignInstanceFn: func(AssignWidgetInput) error { return nil },
		reorderAreaFn:    func(ReorderAreaInput) error { return nil },
		resolveAreaFn: func(input ResolveAreaInput) (ResolvedArea, error) {
			return ResolvedArea{AreaCode: input.AreaCode, Widgets: []WidgetInstance{}}, nil
		},
	}
}

type testTelemetry struct {
	calls int
}

func (t *testTelemetry) Record(context.Context, string, map[string]any) {
	t.calls++
}

func TestAddWidgetValidatesInputs(t *testing.T) {
	service := NewService(Options{WidgetStore: NewInMemoryWidgetStoreStub()})
	err := service.AddWidget(context.Background(), AddWidgetRequest{})
	if !errors.Is(err, ErrAreaRequired) {
		t.Fatalf("expected area error, got %v", err)
	}
	err = service.AddWidget(context.Background(), AddWidgetRequest{AreaCode: AreaStats})
	if !errors.Is(err, ErrDefinitionRequired) {
		t.Fatalf("expected definition error, got %v", err)
	}
}

func TestAddWidgetRejectsInvalidConfiguration(t *testing.T) {
	store := &fakeWidgetStore{}
	service := NewService(Options{WidgetStore: store})
	err := service.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID:  WidgetStats,
		AreaCode:      AreaStats,
		Configuration: map[string]any{"metrics": []string{"unknown"}},
	})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if len(store.assignCalls) != 0 {
		t.Fatalf("expected nothing assigned after validation failure")
	}
}

func TestUpdateWidgetValidatesBeforeWriting(t *testing.T) {
	store := &fakeWidgetStore{
		instances: map[string]WidgetInstance{
			"w1": {ID: "w1", DefinitionID: WidgetAlerts, Configuration: map[string]any{"limit": 5}},
		},
	}
	hook := &collectingHook{}
	service := NewService(Options{WidgetStore: store, RefreshHook: hook})

	err := service.UpdateWidget(context.Background(), "w1", UpdateWidgetRequest{
		Configuration: map[string]any{"limit": 500},
	})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if store.instances["w1"].Configuration["limit"] != 5 {
		t.Fatalf("expected stored configuration untouched, got %+v", store.instances["w1"].Configuration)
	}
	if hook.events != 0 {
		t.Fatalf("expected no refresh event on failure")
	}

	err = service.UpdateWidget(context.Background(), "w1", UpdateWidgetRequest{
		Configuration: map[string]any{"limit": 10},
	})
	if err != nil {
		t.Fatalf("UpdateWidget returned error: %v", err)
	}
	if store.instances["w1"].Configuration["limit"] != 10 {
		t.Fatalf("expected configuration replaced")
	}
	if hook.last.Reason != ReasonUpdated || hook.last.Instance.ID != "w1" {
		t.Fatalf("unexpected refresh event %+v", hook.last)
	}
}

func TestUpdateWidgetRequiresID(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	if err := service.UpdateWidget(context.Background(), "", UpdateWidgetRequest{}); err == nil {
		t.Fatalf("expected error for empty widget id")
	}
}

func TestTakeAlertActionBroadcastsResolution(t *testing.T) {
	alerts := NewInMemoryAlertStore(DefaultAlerts())
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{Alerts: alerts, RefreshHook: hook, Telemetry: telemetry})

	resolution, err := service.TakeAlertAction(context.Background(), "alert-002", "Moved to front shelf")
	if err != nil {
		t.Fatalf("TakeAlertAction returned error: %v", err)
	}
	if resolution.AlertID != "alert-002" || resolution.Notes != "Moved to front shelf" {
		t.Fatalf("unexpected resolution %+v", resolution)
	}
	if hook.last.Reason != ReasonAlertResolved || hook.last.AreaCode != AreaAlerts {
		t.Fatalf("unexpected refresh event %+v", hook.last)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry recorded, got %d", telemetry.calls)
	}
	open, _ := service.OpenAlerts(context.Background())
	for _, alert := range open {
		if alert.ID == "alert-002" {
			t.Fatalf("expected alert-002 to leave the open list")
		}
	}
}

func TestTakeAlertActionUnknownAlert(t *testing.T) {
	hook := &collectingHook{}
	service := NewService(Options{Alerts: NewInMemoryAlertStore(DefaultAlerts()), RefreshHook: hook})
	_, err := service.TakeAlertAction(context.Background(), "nope", "")
	if !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if hook.events != 0 {
		t.Fatalf("expected no refresh for failed action")
	}
}

func TestOpenAlertCount(t *testing.T) {
	service := NewService(Options{Alerts: NewInMemoryAlertStore(DefaultAlerts())})
	before, err := service.OpenAlertCount(context.Background())
	if err != nil {
		t.Fatalf("OpenAlertCount returned error: %v", err)
	}
	if _, err := service.TakeAlertAction(context.Background(), "alert-001", ""); err != nil {
		t.Fatalf("TakeAlertAction returned error: %v", err)
	}
	after, _ := service.OpenAlertCount(context.Background())
	if after != before-1 {
		t.Fatalf("expected count to drop from %d, got %d", before, after)
	}
}

func TestAlertOperationsRequireStore(t *testing.T) {
	service := NewService(Options{})
	if _, err := service.OpenAlerts(context.Background()); !errors.Is(err, errMissingAlertStore) {
		t.Fatalf("expected missing alert store, got %v", err)
	}
	if _, err := service.Alert(context.Background(), "alert-001"); !errors.Is(err, errMissingAlertStore) {
		t.Fatalf("expected missing alert store, got %v", err)
	}
	if _, err := service.TakeAlertAction(context.Background(), "alert-001", ""); !errors.Is(err, errMissingAlertStore) {
		t.Fatalf("expected missing alert store, got %v", err)
	}
	if _, err := service.OpenAlertCount(context.Background()); !errors.Is(err, errMissingAlertStore) {
		t.Fatalf("expected missing alert store, got %v", err)
	}
}

func TestSavePreferencesRequiresUser(t *testing.T) {
	service := NewService(Options{})
	err := service.SavePreferences(context.Background(), ViewerContext{}, LayoutOverrides{})
	if err == nil {
		t.Fatalf("expected error when user missing")
	}
}

func TestSavePreferencesStoresOverrides(t *testing.T) {
	prefs := NewInMemoryPreferenceStore()
	service := NewService(Options{PreferenceStore: prefs})
	viewer := ViewerContext{UserID: "user-4"}
	overrides := LayoutOverrides{
		AreaOrder:     map[string][]string{AreaStats: {"w2", "w1"}},
		HiddenWidgets: map[string]bool{"w3": true},
	}
	if err := service.SavePreferences(context.Background(), viewer, overrides); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	stored, err := prefs.LayoutOverrides(context.Background(), viewer)
	if err != nil {
		t.Fatalf("LayoutOverrides returned error: %v", err)
	}
	if !stored.HiddenWidgets["w3"] {
		t.Fatalf("expected hidden widget persisted")
	}
}
