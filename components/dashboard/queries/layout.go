package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

var errNoService = errors.New("query has no dashboard service")

// AreaCodes resolves the area names accepted in URLs. A known area can be
// given by its full code or by its last segment ("alerts" for
// pharmacy.dashboard.alerts).
type AreaCodes []string

// Resolve returns the full code for name, or an error wrapping
// dashboard.ErrUnknownArea.
func (a AreaCodes) Resolve(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", dashboard.ErrAreaRequired
	}
	for _, code := range a {
		if code == name || code[strings.LastIndex(code, ".")+1:] == name {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %s", dashboard.ErrUnknownArea, name)
}

func knownAreas(codes []string) AreaCodes {
	if len(codes) == 0 {
		return dashboard.DefaultAreaCodes()
	}
	return codes
}

// WidgetAreaInput identifies an area request for a viewer.
type WidgetAreaInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// WidgetAreaQuery returns the widgets a viewer sees in one area.
type WidgetAreaQuery struct {
	service areaService
	areas   AreaCodes
}

// NewWidgetAreaQuery builds the query. Without areas only the four built-in
// pharmacy areas are accepted.
func NewWidgetAreaQuery(service areaService, areas ...string) *WidgetAreaQuery {
	return &WidgetAreaQuery{service: service, areas: knownAreas(areas)}
}

var _ gocommand.Querier[WidgetAreaInput, dashboard.ResolvedArea] = (*WidgetAreaQuery)(nil)

func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (dashboard.ResolvedArea, error) {
	if q.service == nil {
		return dashboard.ResolvedArea{}, errNoService
	}
	code, err := q.areas.Resolve(input.AreaCode)
	if err != nil {
		return dashboard.ResolvedArea{}, err
	}
	return q.service.ResolveArea(ctx, input.Viewer, code)
}

// LayoutInput asks for a viewer's layout. An empty Areas list means every area.
type LayoutInput struct {
	Viewer dashboard.ViewerContext
	Areas  []string
}

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
}

// LayoutQuery resolves the viewer's layout, optionally narrowed to some areas.
type LayoutQuery struct {
	service layoutService
	areas   AreaCodes
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService, areas ...string) *LayoutQuery {
	return &LayoutQuery{service: service, areas: knownAreas(areas)}
}

var _ gocommand.Querier[LayoutInput, dashboard.Layout] = (*LayoutQuery)(nil)

// Query validates the requested areas before resolving anything.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (dashboard.Layout, error) {
	if q.service == nil {
		return dashboard.Layout{}, errNoService
	}
	wanted := make(map[string]bool, len(input.Areas))
	for _, name := range input.Areas {
		code, err := q.areas.Resolve(name)
		if err != nil {
			return dashboard.Layout{}, err
		}
		wanted[code] = true
	}
	layout, err := q.service.ConfigureLayout(ctx, input.Viewer)
	if err != nil || len(wanted) == 0 {
		return layout, err
	}
	filtered := dashboard.Layout{Areas: make(map[string][]dashboard.WidgetInstance, len(wanted))}
	for code := range wanted {
		filtered.Areas[code] = layout.Areas[code]
	}
	return filtered, nil
}
