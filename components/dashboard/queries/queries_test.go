package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

type stubLayoutService struct {
	calls int
}

func (s *stubLayoutService) ConfigureLayout(context.Context, dashboard.ViewerContext) (dashboard.Layout, error) {
	s.calls++
	return dashboard.Layout{Areas: map[string][]dashboard.WidgetInstance{
		dashboard.AreaStats:  {{ID: "w-stats"}},
		dashboard.AreaAlerts: {{ID: "w-alerts"}},
	}}, nil
}

type stubAreaService struct {
	calls int
	code  string
}

func (s *stubAreaService) ResolveArea(_ context.Context, _ dashboard.ViewerContext, code string) (dashboard.ResolvedArea, error) {
	s.calls++
	s.code = code
	return dashboard.ResolvedArea{AreaCode: code}, nil
}

func TestAreaCodesResolve(t *testing.T) {
	areas := AreaCodes(dashboard.DefaultAreaCodes())
	for name, want := range map[string]string{
		"alerts":              dashboard.AreaAlerts,
		" Insights ":          dashboard.AreaInsights,
		dashboard.AreaActions: dashboard.AreaActions,
	} {
		got, err := areas.Resolve(name)
		if err != nil || got != want {
			t.Fatalf("Resolve(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := areas.Resolve("shelf"); !errors.Is(err, dashboard.ErrUnknownArea) {
		t.Fatalf("expected ErrUnknownArea, got %v", err)
	}
	if _, err := areas.Resolve(""); !errors.Is(err, dashboard.ErrAreaRequired) {
		t.Fatalf("expected ErrAreaRequired, got %v", err)
	}
}

func TestLayoutQueryNarrowsAreas(t *testing.T) {
	service := &stubLayoutService{}
	query := NewLayoutQuery(service)

	layout, err := query.Query(context.Background(), LayoutInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(layout.Areas) != 2 {
		t.Fatalf("expected the full layout, got %v", layout.Areas)
	}

	layout, err = query.Query(context.Background(), LayoutInput{Areas: []string{"alerts"}})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(layout.Areas) != 1 || layout.Areas[dashboard.AreaAlerts][0].ID != "w-alerts" {
		t.Fatalf("expected only the alerts area, got %v", layout.Areas)
	}

	if _, err := query.Query(context.Background(), LayoutInput{Areas: []string{"shelf"}}); !errors.Is(err, dashboard.ErrUnknownArea) {
		t.Fatalf("expected ErrUnknownArea, got %v", err)
	}
	if service.calls != 2 {
		t.Fatalf("expected unknown areas to be rejected before resolving, got %d calls", service.calls)
	}
}

func TestWidgetAreaQueryResolvesShortNames(t *testing.T) {
	service := &stubAreaService{}
	query := NewWidgetAreaQuery(service)
	area, err := query.Query(context.Background(), WidgetAreaInput{AreaCode: "stats"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.code != dashboard.AreaStats || area.AreaCode != dashboard.AreaStats {
		t.Fatalf("expected %s, got %q", dashboard.AreaStats, service.code)
	}

	custom := NewWidgetAreaQuery(service, "acme.dashboard.cold_chain")
	if _, err := custom.Query(context.Background(), WidgetAreaInput{AreaCode: "stats"}); !errors.Is(err, dashboard.ErrUnknownArea) {
		t.Fatalf("expected custom area list to replace defaults, got %v", err)
	}
	if _, err := custom.Query(context.Background(), WidgetAreaInput{AreaCode: "cold_chain"}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", service.calls)
	}
}

type stubAlertLister struct {
	alerts []dashboard.Alert
}

func (s stubAlertLister) OpenAlerts(context.Context) ([]dashboard.Alert, error) {
	return s.alerts, nil
}

func TestOpenAlertsQueryFiltersAndLimits(t *testing.T) {
	query := NewOpenAlertsQuery(stubAlertLister{alerts: []dashboard.Alert{
		{ID: "a1", Type: dashboard.AlertCritical},
		{ID: "a2", Type: dashboard.AlertWarning},
		{ID: "a3", Type: dashboard.AlertCritical},
		{ID: "a4", Type: dashboard.AlertInfo},
	}})

	alerts, err := query.Query(context.Background(), OpenAlertsInput{
		Types: []dashboard.AlertType{dashboard.AlertCritical, dashboard.AlertInfo},
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(alerts) != 2 || alerts[0].ID != "a1" || alerts[1].ID != "a3" {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
}

func TestOpenAlertsQueryRequiresService(t *testing.T) {
	if _, err := NewOpenAlertsQuery(nil).Query(context.Background(), OpenAlertsInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
