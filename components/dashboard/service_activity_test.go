package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pharmadash/pkg/activity"
)

func TestWidgetChangesEmitActivity(t *testing.T) {
	cases := []struct {
		name       string
		run        func(ctx context.Context, s *Service) error
		verb       string
		objectType string
		objectID   string
		metadata   map[string]any
	}{
		{
			name: "add",
			run: func(ctx context.Context, s *Service) error {
				return s.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetStats, AreaCode: AreaStats})
			},
			verb:       activity.VerbWidgetAdded,
			objectType: activity.ObjectWidget,
			metadata:   map[string]any{"area": AreaStats, "definition": WidgetStats},
		},
		{
			name:       "remove",
			run:        func(ctx context.Context, s *Service) error { return s.RemoveWidget(ctx, "w-1") },
			verb:       activity.VerbWidgetRemoved,
			objectType: activity.ObjectWidget,
			objectID:   "w-1",
		},
		{
			name: "update",
			run: func(ctx context.Context, s *Service) error {
				return s.UpdateWidget(ctx, "w-1", UpdateWidgetRequest{Configuration: map[string]any{"limit": 3}})
			},
			verb:       activity.VerbWidgetUpdated,
			objectType: activity.ObjectWidget,
			objectID:   "w-1",
			metadata:   map[string]any{"definition": WidgetAlerts},
		},
		{
			name: "reorder",
			run: func(ctx context.Context, s *Service) error {
				return s.ReorderWidgets(ctx, AreaStats, []string{"w1", "w2"})
			},
			verb:       activity.VerbAreaReordered,
			objectType: activity.ObjectArea,
			objectID:   AreaStats,
			metadata:   map[string]any{"count": 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeWidgetStore{instances: map[string]WidgetInstance{
				"w-1": {ID: "w-1", DefinitionID: WidgetAlerts},
			}}
			capture := &activity.CaptureHook{}
			service := NewService(Options{
				WidgetStore:    store,
				ActivityHooks:  activity.Hooks{capture},
				ActivityConfig: activity.Config{Enabled: true, Channel: "pharmacy"},
			})

			require.NoError(t, tc.run(context.Background(), service))
			require.Len(t, capture.Events, 1)
			event := capture.Events[0]
			assert.Equal(t, tc.verb, event.Verb)
			assert.Equal(t, tc.objectType, event.ObjectType)
			if tc.objectID != "" {
				assert.Equal(t, tc.objectID, event.ObjectID)
			}
			assert.Equal(t, "pharmacy", event.Channel)
			for k, v := range tc.metadata {
				assert.Equal(t, v, event.Metadata[k], "metadata %s", k)
			}
		})
	}
}

func TestActivityCarriesRequestIdentity(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		WidgetStore:    &fakeWidgetStore{},
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true},
	})

	err := service.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID: WidgetAlerts,
		AreaCode:     AreaAlerts,
		ActorID:      "tech-4",
		UserID:       "pharmacist-1",
		TenantID:     "store-12",
	})
	require.NoError(t, err)
	require.Len(t, capture.Events, 1)
	event := capture.Events[0]
	assert.Equal(t, "tech-4", event.ActorID)
	assert.Equal(t, "pharmacist-1", event.UserID)
	assert.Equal(t, "store-12", event.TenantID)
}

func TestActivityDisabledEmitsNothing(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		WidgetStore:   &fakeWidgetStore{},
		ActivityHooks: activity.Hooks{capture},
	})
	require.NoError(t, service.ReorderWidgets(context.Background(), AreaStats, []string{"w1"}))
	assert.Empty(t, capture.Events)
}

func TestActivityHookErrorsAreRecorded(t *testing.T) {
	telemetry := &recordingTelemetry{}
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{},
		Telemetry:   telemetry,
		ActivityHooks: activity.Hooks{
			activity.HookFunc(func(context.Context, activity.Event) error {
				return errors.New("sink down")
			}),
		},
		ActivityConfig: activity.Config{Enabled: true},
	})

	require.NoError(t, service.RemoveWidget(context.Background(), "w-9"))
	assert.Contains(t, telemetry.events, "dashboard."+ReasonRemoved)
	assert.Contains(t, telemetry.events, "dashboard.activity_failed")
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}
