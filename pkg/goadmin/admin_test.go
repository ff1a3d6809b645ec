package goadmin_test

import (
	"context"
	"testing"

	core "github.com/goliatone/go-pharmadash/components/dashboard"
	dashboardpkg "github.com/goliatone/go-pharmadash/pkg/dashboard"
	"github.com/goliatone/go-pharmadash/pkg/goadmin"
)

type stubMenuBuilder struct {
	calls int
	items []core.MenuItem
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item core.MenuItem) error {
	s.calls++
	s.items = append(s.items, item)
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := dashboardpkg.NewService(core.Options{WidgetStore: core.NewMemoryWidgetStore()})
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         service,
		MenuBuilder:     builder,
		Items:           []core.MenuItem{{Label: "Compounding", Path: "/compounding"}},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", builder.calls)
	}
	if builder.items[0].Path != "/" || builder.items[0].Icon != "layout-dashboard" {
		t.Fatalf("expected default dashboard entry, got %+v", builder.items[0])
	}
	if admin.Dashboard() == nil {
		t.Fatalf("expected dashboard service")
	}
}

func TestAdminBootstrapWithSidebar(t *testing.T) {
	ctx := context.Background()
	store := core.NewMemoryWidgetStore()
	if err := core.RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	if err := core.RegisterDefinitions(ctx, store, nil); err != nil {
		t.Fatalf("RegisterDefinitions returned error: %v", err)
	}
	sidebar := core.NewSidebar(nil)
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         dashboardpkg.NewService(core.Options{WidgetStore: store}),
		MenuBuilder:     sidebar,
		SeedLayout:      true,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	items, _ := sidebar.Items(ctx, core.RouteMatcher{CurrentPath: "/"})
	if len(items) != 1 || !items[0].Active {
		t.Fatalf("expected active dashboard entry, got %+v", items)
	}
	resolved, _ := store.ResolveArea(ctx, core.ResolveAreaInput{AreaCode: core.AreaAlerts})
	if len(resolved.Widgets) != 1 {
		t.Fatalf("expected seeded alerts widget, got %d", len(resolved.Widgets))
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: false,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected 0 calls, got %d", builder.calls)
	}
	if admin.Dashboard() != nil {
		t.Fatalf("expected nil dashboard when disabled")
	}
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableDashboard: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}
