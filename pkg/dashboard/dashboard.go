// Package dashboard re-exports the pharmacy dashboard core for host applications.
package dashboard

import (
	core "github.com/goliatone/go-pharmadash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Controller renders the dashboard page.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// ViewerContext identifies the viewer of a request.
type ViewerContext = core.ViewerContext

// Alert is an actionable pharmacy alert.
type Alert = core.Alert

// MenuItem is a sidebar entry.
type MenuItem = core.MenuItem

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewController proxies to the internal constructor.
func NewController(opts ControllerOptions) *Controller {
	return core.NewController(opts)
}
