package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-pharmadash/components/dashboard"
	"github.com/goliatone/go-pharmadash/components/dashboard/commands"
	"github.com/goliatone/go-pharmadash/components/dashboard/httpapi"
	"github.com/goliatone/go-pharmadash/components/dashboard/queries"
)

// Request is the part of router.Context the dashboard handlers read.
type Request interface {
	Context() context.Context
	Body() []byte
	Path() string
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Header(key string) string
	Locals(key any, value ...any) any
}

// Routes is the registration surface of a go-router group.
type Routes interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(Request) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, commands and hooks.
type Config struct {
	Router         Routes
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Dialogs        *commands.DialogCommands
	OpenAlerts     gocommand.Querier[queries.OpenAlertsInput, []dashboard.Alert]
	Areas          gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
	Layouts        gocommand.Querier[queries.LayoutInput, dashboard.Layout]
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	Logger         *zap.Logger
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML          string
	Layout        string
	OpenDialog    string
	Alerts        string
	AlertAction   string
	Area          string
	DialogNotes   string
	DialogConfirm string
	DialogCancel  string
	Navigate      string
	Widgets       string
	WidgetID      string
	Reorder       string
	Update        string
	Refresh       string
	Preferences   string
	WebSocket     string
}

// DefaultBasePath prefixes every dashboard route.
const DefaultBasePath = "/pharmacy"

// Mount groups the dashboard under basePath on a go-router router and registers it.
func Mount[T any](r router.Router[T], basePath string, cfg Config) error {
	if r == nil {
		return errors.New("gorouter: router is required")
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}
	cfg.Router = r.Group(basePath)
	cfg.BasePath = basePath
	return Register(cfg)
}

// Register mounts dashboard routes (HTML, JSON, dialog, REST, WebSocket) on cfg.Router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	h := newHandlers(cfg)
	routes := defaultRouteConfig(cfg.Routes)
	r := cfg.Router

	r.Get(routes.HTML, wrap(h.page))
	r.Get(routes.Layout, wrap(h.layout))
	r.Get(routes.Navigate, wrap(h.navigate))

	if cfg.Dialogs != nil {
		r.Get(routes.OpenDialog, wrap(h.openDialog))
		r.Post(routes.DialogNotes, wrap(h.dialogNotes))
		r.Post(routes.DialogConfirm, wrap(h.confirmDialog))
		r.Post(routes.DialogCancel, wrap(h.cancelDialog))
	}

	if cfg.OpenAlerts != nil {
		r.Get(routes.Alerts, wrap(h.listAlerts))
	}
	if cfg.Areas != nil {
		r.Get(routes.Area, wrap(h.area))
	}
	if cfg.Layouts != nil {
		r.Get(routes.Widgets, wrap(h.widgets))
	}

	if cfg.API != nil {
		r.Post(routes.Widgets, wrap(h.assign))
		r.Post(routes.Reorder, wrap(h.reorder))
		r.Post(routes.Refresh, wrap(h.refresh))
		r.Post(routes.Update, wrap(h.update))
		r.Delete(routes.WidgetID, wrap(h.remove))
		r.Post(routes.Preferences, wrap(h.preferences))
		r.Post(routes.AlertAction, wrap(h.alertAction))
	}

	if cfg.Broadcast != nil {
		registerWebSocket(r, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

// Response is what a handler wants written back.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	JSON        any
	Location    string
}

type handlerFunc func(Request) Response

func wrap(h handlerFunc) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return write(ctx, h(ctx))
	})
}

func write(ctx router.Context, resp Response) error {
	if resp.Location != "" {
		ctx.SetHeader("Location", resp.Location)
	}
	if resp.JSON != nil {
		return ctx.JSON(resp.Status, resp.JSON)
	}
	if resp.ContentType != "" {
		ctx.SetHeader("Content-Type", resp.ContentType)
	}
	return ctx.Send(resp.Body)
}

type handlers struct {
	controller *dashboard.Controller
	api        httpapi.Executor
	dialogs    *commands.DialogCommands
	openAlerts gocommand.Querier[queries.OpenAlertsInput, []dashboard.Alert]
	areas      gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
	layouts    gocommand.Querier[queries.LayoutInput, dashboard.Layout]
	resolver   ViewerResolver
	logger     *zap.Logger
	base       string
}

func newHandlers(cfg Config) *handlers {
	h := &handlers{
		controller: cfg.Controller,
		api:        cfg.API,
		dialogs:    cfg.Dialogs,
		openAlerts: cfg.OpenAlerts,
		areas:      cfg.Areas,
		layouts:    cfg.Layouts,
		resolver:   cfg.ViewerResolver,
		logger:     cfg.Logger,
		base:       strings.TrimRight(cfg.BasePath, "/"),
	}
	if h.resolver == nil {
		h.resolver = defaultViewerResolver(h.base)
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

func (h *handlers) page(req Request) Response {
	viewer := h.resolver(req)
	var buf bytes.Buffer
	if err := h.controller.RenderTemplate(req.Context(), viewer, &buf); err != nil {
		return h.fail(err, http.StatusInternalServerError)
	}
	return Response{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}
}

func (h *handlers) layout(req Request) Response {
	payload, err := h.controller.LayoutPayload(req.Context(), h.resolver(req))
	if err != nil {
		return h.fail(err, http.StatusInternalServerError)
	}
	return Response{Status: http.StatusOK, JSON: payload}
}

func (h *handlers) navigate(req Request) Response {
	var target string
	nav := dashboard.NavigatorFunc(func(_ context.Context, path string) error {
		target = path
		return nil
	})
	if err := h.controller.Header().Trigger(req.Context(), nav, req.Param("intent")); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return redirect(target)
}

func (h *handlers) openDialog(req Request) Response {
	viewer := h.resolver(req)
	err := h.dialogs.Open.Execute(req.Context(), commands.OpenAlertDialogInput{
		Viewer:  viewer,
		AlertID: req.Param("id"),
	})
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return h.page(req)
}

func (h *handlers) dialogNotes(req Request) Response {
	notes, _, err := readNotes(req)
	if err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	err = h.dialogs.Notes.Execute(req.Context(), commands.UpdateDialogNotesInput{
		Viewer: h.resolver(req),
		Notes:  notes,
	})
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "saved"}}
}

func (h *handlers) confirmDialog(req Request) Response {
	notes, present, err := readNotes(req)
	if err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	input := commands.ConfirmAlertDialogInput{Viewer: h.resolver(req)}
	if present {
		input.Notes = &notes
	}
	if err := h.dialogs.Confirm.Execute(req.Context(), input); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return redirect(h.base + "/")
}

func (h *handlers) cancelDialog(req Request) Response {
	err := h.dialogs.Cancel.Execute(req.Context(), commands.CancelAlertDialogInput{Viewer: h.resolver(req)})
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return redirect(h.base + "/")
}

func (h *handlers) assign(req Request) Response {
	var payload dashboard.AddWidgetRequest
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	if payload.UserID == "" {
		payload.UserID = h.resolver(req).UserID
	}
	if err := h.api.Assign(req.Context(), payload); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusCreated, JSON: map[string]string{"status": "created"}}
}

func (h *handlers) remove(req Request) Response {
	id := req.Param("id")
	if id == "" {
		return h.fail(errors.New("widget id is required"), http.StatusBadRequest)
	}
	viewer := h.resolver(req)
	if err := h.api.Remove(req.Context(), commands.RemoveWidgetInput{WidgetID: id, UserID: viewer.UserID}); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "removed"}}
}

func (h *handlers) reorder(req Request) Response {
	var payload commands.ReorderWidgetsInput
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	if err := h.api.Reorder(req.Context(), payload); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "reordered"}}
}

func (h *handlers) refresh(req Request) Response {
	var payload commands.RefreshWidgetInput
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	if err := h.api.Refresh(req.Context(), payload); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusAccepted, JSON: map[string]string{"status": "queued"}}
}

func (h *handlers) update(req Request) Response {
	var payload commands.UpdateWidgetInput
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	payload.WidgetID = req.Param("id")
	if payload.UserID == "" {
		payload.UserID = h.resolver(req).UserID
	}
	if err := h.api.Update(req.Context(), payload); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "updated"}}
}

func (h *handlers) alertAction(req Request) Response {
	notes, _, err := readNotes(req)
	if err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	input := commands.TakeAlertActionInput{
		AlertID: req.Param("id"),
		Notes:   notes,
		UserID:  h.resolver(req).UserID,
	}
	if err := h.api.TakeAlertAction(req.Context(), input); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "resolved"}}
}

func (h *handlers) listAlerts(req Request) Response {
	input := queries.OpenAlertsInput{}
	for _, raw := range strings.Split(req.Query("type"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			input.Types = append(input.Types, dashboard.AlertType(strings.ToLower(raw)))
		}
	}
	if raw := req.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return h.fail(fmt.Errorf("invalid limit %q", raw), http.StatusBadRequest)
		}
		input.Limit = limit
	}
	alerts, err := h.openAlerts.Query(req.Context(), input)
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]any{"alerts": alerts, "total": len(alerts)}}
}

func (h *handlers) area(req Request) Response {
	area, err := h.areas.Query(req.Context(), queries.WidgetAreaInput{
		Viewer:   h.resolver(req),
		AreaCode: req.Param("code"),
	})
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: area}
}

// widgets lists the viewer's widget instances; ?area=alerts,stats narrows it.
func (h *handlers) widgets(req Request) Response {
	input := queries.LayoutInput{Viewer: h.resolver(req)}
	for _, raw := range strings.Split(req.Query("area"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			input.Areas = append(input.Areas, raw)
		}
	}
	layout, err := h.layouts.Query(req.Context(), input)
	if err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: layout}
}

func (h *handlers) preferences(req Request) Response {
	var payload commands.SaveLayoutPreferencesInput
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		return h.fail(err, http.StatusBadRequest)
	}
	payload.Viewer = h.resolver(req)
	if err := h.api.Preferences(req.Context(), payload); err != nil {
		return h.fail(err, httpapi.StatusFor(err))
	}
	return Response{Status: http.StatusOK, JSON: map[string]string{"status": "saved"}}
}

func (h *handlers) fail(err error, status int) Response {
	if status >= http.StatusInternalServerError {
		h.logger.Error("dashboard request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Debug("dashboard request rejected", zap.Int("status", status), zap.Error(err))
	}
	return Response{Status: status, JSON: map[string]string{"error": err.Error()}}
}

func redirect(location string) Response {
	return Response{
		Status:   http.StatusSeeOther,
		Location: location,
		JSON:     map[string]string{"location": location},
	}
}

// readNotes accepts a form post or a JSON body {"notes": "..."}. present is
// false when the body carries no notes field.
func readNotes(req Request) (notes string, present bool, err error) {
	body := req.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return "", false, nil
	}
	if strings.HasPrefix(req.Header("Content-Type"), "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", false, err
		}
		if _, ok := values["notes"]; !ok {
			return "", false, nil
		}
		return values.Get("notes"), true, nil
	}
	var payload struct {
		Notes *string `json:"notes"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false, err
	}
	if payload.Notes == nil {
		return "", false, nil
	}
	return *payload.Notes, true, nil
}

func registerWebSocket(r Routes, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// defaultViewerResolver reads the viewer from locals or the X-User-ID header.
// CurrentPath is the request path relative to base, so the sidebar matches
// the page actually being served.
func defaultViewerResolver(base string) ViewerResolver {
	return func(req Request) dashboard.ViewerContext {
		viewer := viewerFromRequest(req)
		viewer.CurrentPath = relativePath(base, req.Path())
		return viewer
	}
}

func viewerFromRequest(req Request) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := req.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(req.Header("X-User-ID"))
	}
	if roles, ok := req.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(req)
	viewer.Query = strings.TrimSpace(req.Query("q"))
	return viewer
}

func relativePath(base, path string) string {
	base = strings.TrimRight(base, "/")
	if base != "" && (path == base || strings.HasPrefix(path, base+"/")) {
		path = path[len(base):]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func inferLocale(req Request) string {
	if locale, ok := req.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(req.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := req.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := RouteConfig{
		HTML:          "/",
		Layout:        "/_layout",
		OpenDialog:    "/alerts/:id/dialog",
		Alerts:        "/alerts",
		AlertAction:   "/alerts/:id/actions",
		Area:          "/areas/:code",
		DialogNotes:   "/alerts/dialog/notes",
		DialogConfirm: "/alerts/dialog/confirm",
		DialogCancel:  "/alerts/dialog/cancel",
		Navigate:      "/navigate/:intent",
		Widgets:       "/widgets",
		WidgetID:      "/widgets/:id",
		Reorder:       "/widgets/reorder",
		Update:        "/widgets/:id",
		Refresh:       "/widgets/refresh",
		Preferences:   "/preferences",
		WebSocket:     "/ws",
	}
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&routes.HTML, defaults.HTML)
	fill(&routes.Layout, defaults.Layout)
	fill(&routes.OpenDialog, defaults.OpenDialog)
	fill(&routes.Alerts, defaults.Alerts)
	fill(&routes.AlertAction, defaults.AlertAction)
	fill(&routes.Area, defaults.Area)
	fill(&routes.DialogNotes, defaults.DialogNotes)
	fill(&routes.DialogConfirm, defaults.DialogConfirm)
	fill(&routes.DialogCancel, defaults.DialogCancel)
	fill(&routes.Navigate, defaults.Navigate)
	fill(&routes.Widgets, defaults.Widgets)
	fill(&routes.WidgetID, defaults.WidgetID)
	fill(&routes.Reorder, defaults.Reorder)
	fill(&routes.Update, defaults.Update)
	fill(&routes.Refresh, defaults.Refresh)
	fill(&routes.Preferences, defaults.Preferences)
	fill(&routes.WebSocket, defaults.WebSocket)
	return routes
}
