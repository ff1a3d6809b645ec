package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedReport counts what a bootstrap run created. Entries that already
// existed are not counted, so a second run reports zeros.
type SeedReport struct {
	Areas       int `json:"areas"`
	Definitions int `json:"definitions"`
	Widgets     int `json:"widgets"`
}

// Bootstrap prepares a store for the pharmacy dashboard: the four areas, every
// definition known to registry and, when service is set, the starter layout.
func Bootstrap(ctx context.Context, store WidgetStore, registry ProviderRegistry, service *Service) (SeedReport, error) {
	var report SeedReport
	var err error
	if report.Areas, err = ensureAreas(ctx, store); err != nil {
		return report, err
	}
	if report.Definitions, err = ensureDefinitions(ctx, store, registry); err != nil {
		return report, err
	}
	if service != nil {
		report.Widgets, err = seedWidgets(ctx, service)
	}
	return report, err
}

// RegisterAreas ensures the pharmacy dashboard areas exist in the widget store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	_, err := ensureAreas(ctx, store)
	return err
}

// RegisterDefinitions stores the built-in widget definitions together with
// anything registry picked up from manifests. A definition already held by
// registry wins over the built-in one with the same code.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	_, err := ensureDefinitions(ctx, store, registry)
	return err
}

// SeedLayout places the starter widgets. Areas that already hold widgets are
// left alone so seeding twice does not duplicate cards.
func SeedLayout(ctx context.Context, service *Service) error {
	_, err := seedWidgets(ctx, service)
	return err
}

func ensureAreas(ctx context.Context, store WidgetStore) (int, error) {
	if store == nil {
		return 0, errMissingWidgetStore
	}
	created := 0
	for _, area := range DefaultAreaDefinitions() {
		ok, err := store.EnsureArea(ctx, area)
		if err != nil {
			return created, fmt.Errorf("register area %s: %w", area.Code, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func ensureDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) (int, error) {
	if store == nil {
		return 0, errMissingWidgetStore
	}
	defs := DefaultWidgetDefinitions()
	if registry != nil {
		builtin := make(map[string]bool, len(defs))
		for i, def := range defs {
			builtin[def.Code] = true
			if override, ok := registry.Definition(def.Code); ok {
				defs[i] = override
				continue
			}
			if err := registry.RegisterDefinition(def); err != nil {
				return 0, fmt.Errorf("register definition in registry %s: %w", def.Code, err)
			}
		}
		for _, def := range registry.Definitions() {
			if !builtin[def.Code] {
				defs = append(defs, def)
			}
		}
	}
	created := 0
	for _, def := range defs {
		ok, err := store.EnsureDefinition(ctx, def)
		if err != nil {
			return created, fmt.Errorf("register definition %s: %w", def.Code, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func seedWidgets(ctx context.Context, service *Service) (int, error) {
	if service == nil {
		return 0, errors.New("dashboard: service is required to seed layout")
	}
	store, err := service.widgetStore()
	if err != nil {
		return 0, err
	}
	var seedErr error
	added := 0
	for _, req := range DefaultSeedWidgets() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: req.AreaCode})
		if err != nil {
			seedErr = errors.Join(seedErr, err)
			continue
		}
		if len(resolved.Widgets) > 0 {
			continue
		}
		if err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, err)
			continue
		}
		added++
	}
	return added, seedErr
}
