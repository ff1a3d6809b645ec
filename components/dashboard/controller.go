package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	defaultLayoutTemplate = "layout.html"
	headerTemplate        = "header.html"
	sidebarTemplate       = "sidebar.html"
	dialogTemplate        = "alert_dialog.html"
	chartTemplate         = "widget_chart.html"
)

var defaultWidgetTemplates = map[string]string{
	WidgetStats:           "widget_stats.html",
	WidgetQuickActions:    "widget_quick_actions.html",
	WidgetAlerts:          "widget_alerts.html",
	WidgetDispensingTrend: chartTemplate,
}

// LayoutResolver is the slice of Service the controller renders from.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the page shell collaborators. Only Service and
// Renderer are required.
type ControllerOptions struct {
	Service         LayoutResolver
	Renderer        Renderer
	Template        string
	Page            Page
	Header          *Header
	HeaderBadges    BadgeSource
	Sidebar         *Sidebar
	Matcher         func(viewer ViewerContext) ActiveMatcher
	Dialogs         *DialogSessions
	Areas           []WidgetAreaDefinition
	WidgetTemplates map[string]string
	BasePath        string
}

// Controller composes header, sidebar, widget areas and the alert dialog into
// the dashboard page.
type Controller struct {
	opts ControllerOptions
}

// NewController applies defaults to opts.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultLayoutTemplate
	}
	opts.Page = opts.Page.withDefaults()
	if opts.Header == nil {
		header := DefaultHeader()
		opts.Header = &header
	}
	if opts.Sidebar == nil {
		opts.Sidebar = NewSidebar(DefaultMenuItems(), WithDefaultPath("/"))
	}
	if opts.Matcher == nil {
		opts.Matcher = func(viewer ViewerContext) ActiveMatcher {
			return RouteMatcher{CurrentPath: viewer.CurrentPath}
		}
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaDefinitions()
	}
	templates := make(map[string]string, len(defaultWidgetTemplates)+len(opts.WidgetTemplates))
	for code, name := range defaultWidgetTemplates {
		templates[code] = name
	}
	for code, name := range opts.WidgetTemplates {
		templates[code] = name
	}
	opts.WidgetTemplates = templates
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	return &Controller{opts: opts}
}

// Header returns the configured top bar.
func (c *Controller) Header() Header {
	return *c.opts.Header
}

// LayoutPayload returns the page view model as JSON-friendly data.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	view, err := c.build(ctx, viewer)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"page":    view.page,
		"header":  view.header,
		"sidebar": view.sidebar,
		"areas":   view.layout.Areas,
	}
	if view.dialogOpen {
		payload["dialog"] = view.dialog
	}
	return payload, nil
}

// RenderTemplate renders the full page into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: renderer is required")
	}
	view, err := c.build(ctx, viewer)
	if err != nil {
		return err
	}
	headerHTML, err := c.opts.Renderer.Render(headerTemplate, c.headerData(view.header))
	if err != nil {
		return fmt.Errorf("dashboard: render header: %w", err)
	}
	sidebarHTML, err := c.opts.Renderer.Render(sidebarTemplate, sidebarData(view.sidebar))
	if err != nil {
		return fmt.Errorf("dashboard: render sidebar: %w", err)
	}
	areas, err := c.renderAreas(view.layout)
	if err != nil {
		return err
	}
	dialogHTML := ""
	if view.dialogOpen {
		if dialogHTML, err = c.opts.Renderer.Render(dialogTemplate, c.dialogData(view.dialog)); err != nil {
			return fmt.Errorf("dashboard: render dialog: %w", err)
		}
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, map[string]any{
		"page":         map[string]any{"title": view.page.Title, "subtitle": view.page.Subtitle},
		"header_html":  headerHTML,
		"sidebar_html": sidebarHTML,
		"areas":        areas,
		"dialog_html":  dialogHTML,
		"base_path":    c.opts.BasePath,
	}, out)
	return err
}

// RenderDialog renders only the viewer's alert dialog. A closed dialog renders nothing.
func (c *Controller) RenderDialog(viewer ViewerContext, out io.Writer) error {
	if c.opts.Dialogs == nil {
		return nil
	}
	view, ok := c.opts.Dialogs.View(viewer)
	if !ok {
		return nil
	}
	if c.opts.Renderer == nil {
		return errors.New("dashboard: renderer is required")
	}
	_, err := c.opts.Renderer.Render(dialogTemplate, c.dialogData(view), out)
	return err
}

type pageView struct {
	page       Page
	header     HeaderView
	sidebar    []MenuItem
	layout     Layout
	dialog     AlertDialogView
	dialogOpen bool
}

func (c *Controller) build(ctx context.Context, viewer ViewerContext) (pageView, error) {
	if c.opts.Service == nil {
		return pageView{}, errors.New("dashboard: controller requires a layout resolver")
	}
	layout, err := c.opts.Service.ConfigureLayout(ctx, viewer)
	if err != nil {
		return pageView{}, err
	}
	items, err := c.opts.Sidebar.Items(ctx, c.opts.Matcher(viewer))
	if err != nil {
		return pageView{}, err
	}
	var badges map[string]int
	if c.opts.HeaderBadges != nil {
		if badges, err = c.opts.HeaderBadges.Badges(ctx); err != nil {
			return pageView{}, err
		}
	}
	view := pageView{
		page:    c.opts.Page,
		header:  c.opts.Header.View(viewer.Query, badges),
		sidebar: items,
		layout:  layout,
	}
	if c.opts.Dialogs != nil {
		view.dialog, view.dialogOpen = c.opts.Dialogs.View(viewer)
	}
	return view, nil
}

func (c *Controller) renderAreas(layout Layout) ([]map[string]any, error) {
	areas := make([]map[string]any, 0, len(c.opts.Areas))
	for _, area := range c.opts.Areas {
		widgets := layout.Areas[area.Code]
		rendered := make([]string, 0, len(widgets))
		for _, widget := range widgets {
			data, _ := widget.Metadata["data"].(WidgetData)
			name, ok := c.opts.WidgetTemplates[widget.DefinitionID]
			if _, chart := data["chart_html"]; !ok && chart {
				name, ok = chartTemplate, true
			}
			if !ok {
				continue
			}
			html, err := c.opts.Renderer.Render(name, map[string]any{
				"widget": map[string]any{
					"id":            widget.ID,
					"definition_id": widget.DefinitionID,
					"area_code":     area.Code,
				},
				"data":      map[string]any(data),
				"base_path": c.opts.BasePath,
			})
			if err != nil {
				return nil, fmt.Errorf("dashboard: render widget %s: %w", widget.ID, err)
			}
			rendered = append(rendered, html)
		}
		areas = append(areas, map[string]any{
			"code":    area.Code,
			"name":    area.Name,
			"widgets": rendered,
		})
	}
	return areas, nil
}

func (c *Controller) headerData(view HeaderView) map[string]any {
	actions := make([]map[string]any, len(view.Actions))
	for i, action := range view.Actions {
		actions[i] = map[string]any{
			"intent": action.Intent,
			"icon":   action.Icon,
			"label":  action.Label,
			"href":   c.opts.BasePath + "/navigate/" + action.Intent,
			"badge":  action.Badge,
		}
	}
	return map[string]any{
		"search_placeholder": view.SearchPlaceholder,
		"query":              view.Query,
		"actions":            actions,
		"search_action":      c.opts.BasePath + "/",
	}
}

func sidebarData(items []MenuItem) map[string]any {
	list := make([]map[string]any, len(items))
	for i, item := range items {
		list[i] = map[string]any{
			"icon":   item.Icon,
			"label":  item.Label,
			"path":   item.Path,
			"badge":  item.Badge,
			"active": item.Active,
		}
	}
	return map[string]any{"items": list}
}

func (c *Controller) dialogData(view AlertDialogView) map[string]any {
	return map[string]any{
		"alert": map[string]any{
			"id":          view.Alert.ID,
			"title":       view.Alert.Title,
			"description": view.Alert.Description,
			"type":        string(view.Alert.Type),
			"action":      view.Alert.Action,
		},
		"icon":        map[string]any{"name": view.Icon.Name, "color": view.Icon.Color},
		"notes":       view.Notes,
		"notes_url":   c.opts.BasePath + "/alerts/dialog/notes",
		"confirm_url": c.opts.BasePath + "/alerts/dialog/confirm",
		"cancel_url":  c.opts.BasePath + "/alerts/dialog/cancel",
	}
}
