package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"go.uber.org/zap"

	"github.com/goliatone/go-pharmadash/components/dashboard"
	"github.com/goliatone/go-pharmadash/components/dashboard/commands"
	"github.com/goliatone/go-pharmadash/components/dashboard/gorouter"
	"github.com/goliatone/go-pharmadash/components/dashboard/httpapi"
	"github.com/goliatone/go-pharmadash/components/dashboard/queries"
	"github.com/goliatone/go-pharmadash/pkg/activity"
	"github.com/goliatone/go-pharmadash/pkg/activity/usersink"
	"github.com/goliatone/go-pharmadash/pkg/config"
	"github.com/goliatone/go-pharmadash/pkg/goadmin"
	"github.com/goliatone/go-pharmadash/pkg/pharmacyapi"
)

// app holds the wired dashboard before it is mounted on a server.
type app struct {
	service    *dashboard.Service
	controller *dashboard.Controller
	sidebar    *dashboard.Sidebar
	dialogs    commands.DialogCommands
	executor   *httpapi.CommandExecutor
	broadcast  *dashboard.BroadcastHook
	basePath   string
}

func newBackend(cfg config.BackendConfig) (pharmacyapi.Client, error) {
	if cfg.BaseURL == "" {
		return pharmacyapi.NewMockClient(pharmacyapi.DefaultMockData(time.Now())), nil
	}
	return pharmacyapi.NewHTTPClient(pharmacyapi.HTTPConfig{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey})
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	basePath := strings.TrimRight(cfg.Server.BasePath, "/")
	if basePath == "" {
		basePath = gorouter.DefaultBasePath
	}

	client, err := newBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	alerts := pharmacyapi.NewAlertStore(client)

	registry := dashboard.NewRegistry()
	if err := registry.RegisterProviders(dashboard.ProviderSet{
		Stats:      pharmacyapi.NewStatsSource(client),
		Alerts:     alerts,
		DialogPath: basePath + "/alerts/%s/dialog",
		Dispensing: pharmacyapi.NewDispensingRepository(client),
	}); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}
	for _, path := range cfg.Manifests {
		if err := loadManifests(registry, path); err != nil {
			return nil, err
		}
	}

	telemetry := dashboard.NewZapTelemetry(logger)
	store := dashboard.NewMemoryWidgetStore()
	seed := commands.NewSeedDashboardCommand(store, registry, nil, telemetry)
	report, err := seed.Query(ctx, commands.SeedDashboardInput{})
	if err != nil {
		return nil, fmt.Errorf("seed dashboard: %w", err)
	}
	logger.Debug("dashboard store prepared",
		zap.Int("areas", report.Areas),
		zap.Int("definitions", report.Definitions),
	)

	broadcast := dashboard.NewBroadcastHook()
	hooks := activity.Hooks{usersink.Hook{Sink: auditLog{logger: logger}, Verbs: cfg.Activity.Verbs}}
	service := dashboard.NewService(dashboard.Options{
		WidgetStore:     store,
		Alerts:          alerts,
		PreferenceStore: dashboard.NewInMemoryPreferenceStore(),
		Providers:       registry,
		RefreshHook:     dashboard.RefreshHooks{broadcast, dashboard.SharedChartCache},
		Telemetry:       telemetry,
		ActivityHooks:   hooks,
		ActivityConfig:  cfg.Activity,
	})

	sidebar := dashboard.NewSidebar(dashboard.DefaultMenuItems(),
		dashboard.WithDefaultPath("/"),
		dashboard.WithBadgeSource(dashboard.BadgeSourceFunc(func(ctx context.Context) (map[string]int, error) {
			count, err := service.OpenAlertCount(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int{"/alerts": count}, nil
		})),
	)
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		MenuBuilder:     sidebar,
		Service:         service,
		Items:           cfg.Menu,
		SeedLayout:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := admin.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	alertCmd := commands.NewTakeAlertActionCommand(service, activity.NewEmitter(hooks, cfg.Activity), telemetry)
	sessions := dashboard.NewDialogSessions(func(ctx context.Context, alertID, notes string) error {
		return alertCmd.Execute(ctx, commands.TakeAlertActionInput{AlertID: alertID, Notes: notes})
	}, func(viewer dashboard.ViewerContext) {
		logger.Debug("alert dialog closed", zap.String("user_id", viewer.UserID))
	})

	renderer, err := dashboard.NewTemplateRenderer(cfg.Server.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Sidebar:  sidebar,
		Dialogs:  sessions,
		BasePath: basePath,
		HeaderBadges: dashboard.BadgeSourceFunc(func(ctx context.Context) (map[string]int, error) {
			count, err := service.OpenAlertCount(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int{dashboard.IntentAlerts: count}, nil
		}),
	})

	return &app{
		service:    service,
		controller: controller,
		sidebar:    sidebar,
		dialogs:    commands.NewDialogCommands(alerts, sessions, telemetry),
		executor: &httpapi.CommandExecutor{
			AssignCommander:      commands.NewAssignWidgetCommand(service, telemetry),
			RemoveCommander:      commands.NewRemoveWidgetCommand(service, telemetry),
			UpdateCommander:      commands.NewUpdateWidgetCommand(service, telemetry),
			ReorderCommander:     commands.NewReorderWidgetsCommand(service, telemetry),
			RefreshCommander:     commands.NewRefreshWidgetCommand(service, telemetry),
			PreferencesCommander: commands.NewSaveLayoutPreferencesCommand(service, telemetry),
			AlertCommander:       alertCmd,
		},
		broadcast: broadcast,
		basePath:  basePath,
	}, nil
}

// auditLog is the go-users activity sink used when no users database is
// attached: records go to the structured log.
type auditLog struct {
	logger *zap.Logger
}

func (a auditLog) Log(_ context.Context, record types.ActivityRecord) error {
	a.logger.Info("activity",
		zap.String("verb", record.Verb),
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.Stringer("user_id", record.UserID),
		zap.String("channel", record.Channel),
		zap.Any("data", record.Data),
	)
	return nil
}

func loadManifests(registry *dashboard.Registry, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}
	if info.IsDir() {
		_, err = registry.LoadManifestDir(path)
	} else {
		_, err = registry.LoadManifestFile(path)
	}
	return err
}

// routes returns the go-router configuration for the dashboard endpoints.
func (a *app) routes(logger *zap.Logger) gorouter.Config {
	return gorouter.Config{
		Controller: a.controller,
		API:        a.executor,
		Dialogs:    &a.dialogs,
		OpenAlerts: queries.NewOpenAlertsQuery(a.service),
		Areas:      queries.NewWidgetAreaQuery(a.service),
		Layouts:    queries.NewLayoutQuery(a.service),
		Broadcast:  a.broadcast,
		Logger:     logger,
	}
}
