package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryHoldsBuiltIns(t *testing.T) {
	registry := NewRegistry()
	codes := make([]string, 0)
	for _, def := range registry.Definitions() {
		codes = append(codes, def.Code)
	}
	assert.Equal(t, []string{WidgetAlerts, WidgetDispensingTrend, WidgetQuickActions, WidgetStats}, codes)
	for _, code := range codes {
		_, ok := registry.Provider(code)
		assert.True(t, ok, "provider for %s", code)
	}
}

func TestRegisterProviderNeedsDefinition(t *testing.T) {
	registry := NewRegistry()
	noop := ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) { return nil, nil })

	assert.ErrorContains(t, registry.RegisterProvider("acme.widget.missing", noop), "not found")
	assert.Error(t, registry.RegisterProvider(WidgetStats, nil))
	assert.Error(t, registry.RegisterDefinition(WidgetDefinition{}))

	require.NoError(t, registry.RegisterDefinition(WidgetDefinition{Code: "acme.widget.missing"}))
	assert.NoError(t, registry.RegisterProvider("acme.widget.missing", noop))
}

func TestRegisterProvidersUsesAlertStore(t *testing.T) {
	registry := NewRegistry()
	store := NewInMemoryAlertStore([]Alert{{ID: "alert-9", Title: "Fridge above 8C", Type: AlertCritical}})
	require.NoError(t, registry.RegisterProviders(ProviderSet{Alerts: store, DialogPath: "/alerts/%s/dialog"}))

	provider, ok := registry.Provider(WidgetAlerts)
	require.True(t, ok)
	data, err := provider.Fetch(context.Background(), WidgetContext{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
