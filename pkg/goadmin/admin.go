package goadmin

import (
	"context"
	"errors"
	"fmt"

	core "github.com/goliatone/go-pharmadash/components/dashboard"
	dashboardpkg "github.com/goliatone/go-pharmadash/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the host navigation.
// *core.Sidebar satisfies it.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item core.MenuItem) error
}

// Config wires the dashboard service and host menu entries into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	DefaultMenuItem core.MenuItem
	// Items are extra entries merged into the menu, matched by path.
	Items []core.MenuItem
	// SeedLayout places the starter widgets during Bootstrap.
	SeedLayout bool
}

// Admin exposes helpers for admin-style host applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = core.DefaultMenuCode
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Dashboard"
	}
	if cfg.DefaultMenuItem.Path == "" {
		cfg.DefaultMenuItem.Path = "/"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "layout-dashboard"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds menu entries and, when asked, the starter layout.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard {
		return nil
	}
	if a.cfg.MenuBuilder != nil {
		items := append([]core.MenuItem{a.cfg.DefaultMenuItem}, a.cfg.Items...)
		for _, item := range items {
			if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
				return fmt.Errorf("goadmin: menu item %s: %w", item.Path, err)
			}
		}
	}
	if a.cfg.SeedLayout {
		return core.SeedLayout(ctx, a.cfg.Service)
	}
	return nil
}
