package dashboard

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderSet carries the collaborators behind the pharmacy widgets. Nil
// entries keep the built-in mock providers.
type ProviderSet struct {
	Stats      StatsSource
	Alerts     AlertStore
	DialogPath string
	Dispensing DispensingRepository
}

// Registry holds the widget catalogue: definitions, the providers that feed
// them and the provider metadata declared in manifests. It satisfies
// ProviderRegistry.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	providers   map[string]Provider
	declared    map[string]ManifestProvider
}

// NewRegistry returns a registry holding the built-in pharmacy widgets backed
// by mock data.
func NewRegistry() *Registry {
	r := &Registry{
		definitions: map[string]WidgetDefinition{},
		providers:   map[string]Provider{},
		declared:    map[string]ManifestProvider{},
	}
	for _, def := range DefaultWidgetDefinitions() {
		r.definitions[def.Code] = def
		if provider, ok := defaultProviders[def.Code]; ok {
			r.providers[def.Code] = provider
		}
	}
	return r
}

// RegisterProviders swaps the mock providers for collaborator-backed ones.
func (r *Registry) RegisterProviders(set ProviderSet) error {
	bindings := map[string]Provider{}
	if set.Stats != nil {
		bindings[WidgetStats] = newStatsProvider(set.Stats)
	}
	if set.Alerts != nil {
		bindings[WidgetAlerts] = NewAlertsProvider(set.Alerts, set.DialogPath)
	}
	if set.Dispensing != nil {
		bindings[WidgetDispensingTrend] = NewDispensingTrendProvider(set.Dispensing, nil)
	}
	for code, provider := range bindings {
		if err := r.RegisterProvider(code, provider); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition adds or replaces a definition.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider binds a provider to an already registered definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	switch {
	case code == "":
		return fmt.Errorf("dashboard: widget definition code is required to register provider")
	case provider == nil:
		return fmt.Errorf("dashboard: provider for %s cannot be nil", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("dashboard: widget definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// ProviderMetadata returns the provider block a manifest declared for code.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.declared[code]
	return meta, ok
}

// Definitions lists every definition sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

func (r *Registry) recordProviderMetadata(code string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declared[code] = meta
}
