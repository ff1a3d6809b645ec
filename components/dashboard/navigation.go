package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var errMenuItemPath = errors.New("dashboard: menu item path is required")

// MenuItem is a sidebar navigation entry.
type MenuItem struct {
	Icon     string `json:"icon" yaml:"icon"`
	Label    string `json:"label" yaml:"label"`
	Path     string `json:"path" yaml:"path"`
	Badge    int    `json:"badge,omitempty" yaml:"badge,omitempty"`
	Active   bool   `json:"active" yaml:"active,omitempty"`
	Position int    `json:"-" yaml:"position,omitempty"`
}

// ActiveMatcher decides which menu items are candidates for the active state.
// Score returns a positive value for candidates; the highest score wins.
type ActiveMatcher interface {
	Score(item MenuItem) int
}

// RouteMatcher marks the item matching the current path. Exact matches beat
// prefix matches, longer prefixes beat shorter ones.
type RouteMatcher struct {
	CurrentPath string
}

// Score implements ActiveMatcher.
func (m RouteMatcher) Score(item MenuItem) int {
	current := normalizeMenuPath(m.CurrentPath)
	path := normalizeMenuPath(item.Path)
	if current == "" || path == "" {
		return 0
	}
	if current == path {
		return 2*len(path) + 1
	}
	if path != "/" && strings.HasPrefix(current, path+"/") {
		return 2 * len(path)
	}
	return 0
}

// FlagMatcher trusts the Active flag carried by each item.
type FlagMatcher struct{}

// Score implements ActiveMatcher.
func (FlagMatcher) Score(item MenuItem) int {
	if item.Active {
		return 1
	}
	return 0
}

// BadgeSource supplies dynamic badge counts keyed by menu path.
type BadgeSource interface {
	Badges(ctx context.Context) (map[string]int, error)
}

// BadgeSourceFunc adapts a function into a BadgeSource.
type BadgeSourceFunc func(ctx context.Context) (map[string]int, error)

// Badges calls f(ctx).
func (f BadgeSourceFunc) Badges(ctx context.Context) (map[string]int, error) {
	return f(ctx)
}

// Sidebar renders a menu list with a single highlighted entry.
type Sidebar struct {
	mu          sync.RWMutex
	menus       map[string][]MenuItem
	defaultPath string
	badges      BadgeSource
}

// SidebarOption customizes a Sidebar.
type SidebarOption func(*Sidebar)

// WithDefaultPath activates the item with path when no other item matches.
func WithDefaultPath(path string) SidebarOption {
	return func(s *Sidebar) {
		s.defaultPath = normalizeMenuPath(path)
	}
}

// WithBadgeSource overlays dynamic badge counts.
func WithBadgeSource(src BadgeSource) SidebarOption {
	return func(s *Sidebar) {
		s.badges = src
	}
}

// DefaultMenuCode is the menu rendered by the dashboard page.
const DefaultMenuCode = "pharmacy.main"

// NewSidebar builds a sidebar whose default menu holds items.
func NewSidebar(items []MenuItem, opts ...SidebarOption) *Sidebar {
	s := &Sidebar{menus: map[string][]MenuItem{}}
	s.menus[DefaultMenuCode] = cloneMenu(items)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureMenuItem adds or updates an entry (matched by path) in the named menu.
func (s *Sidebar) EnsureMenuItem(_ context.Context, menuCode string, item MenuItem) error {
	if normalizeMenuPath(item.Path) == "" {
		return errMenuItemPath
	}
	if menuCode == "" {
		menuCode = DefaultMenuCode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.menus[menuCode]
	for i := range items {
		if normalizeMenuPath(items[i].Path) == normalizeMenuPath(item.Path) {
			items[i] = item
			s.menus[menuCode] = items
			return nil
		}
	}
	items = append(items, item)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	s.menus[menuCode] = items
	return nil
}

// Items returns the default menu with badges applied and at most one active item.
func (s *Sidebar) Items(ctx context.Context, matcher ActiveMatcher) ([]MenuItem, error) {
	return s.MenuItems(ctx, DefaultMenuCode, matcher)
}

// MenuItems resolves a named menu.
func (s *Sidebar) MenuItems(ctx context.Context, menuCode string, matcher ActiveMatcher) ([]MenuItem, error) {
	s.mu.RLock()
	items := cloneMenu(s.menus[menuCode])
	s.mu.RUnlock()

	if s.badges != nil {
		counts, err := s.badges.Badges(ctx)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if count, ok := counts[normalizeMenuPath(items[i].Path)]; ok {
				items[i].Badge = count
			}
		}
	}
	return markActive(items, matcher, s.defaultPath), nil
}

func markActive(items []MenuItem, matcher ActiveMatcher, defaultPath string) []MenuItem {
	if matcher == nil {
		matcher = FlagMatcher{}
	}
	best, bestScore := -1, 0
	for i, item := range items {
		if score := matcher.Score(item); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 && defaultPath != "" {
		for i, item := range items {
			if normalizeMenuPath(item.Path) == defaultPath {
				best = i
				break
			}
		}
	}
	for i := range items {
		items[i].Active = i == best
	}
	return items
}

func normalizeMenuPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func cloneMenu(items []MenuItem) []MenuItem {
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}

// DefaultMenuItems returns the pharmacy navigation menu.
func DefaultMenuItems() []MenuItem {
	return []MenuItem{
		{Icon: "layout-dashboard", Label: "Dashboard", Path: "/", Position: 0},
		{Icon: "package", Label: "Inventory", Path: "/inventory", Position: 10},
		{Icon: "file-text", Label: "Prescriptions", Path: "/prescriptions", Badge: 12, Position: 20},
		{Icon: "shopping-cart", Label: "Orders", Path: "/orders", Badge: 3, Position: 30},
		{Icon: "users", Label: "Patients", Path: "/patients", Position: 40},
		{Icon: "truck", Label: "Suppliers", Path: "/suppliers", Position: 50},
		{Icon: "bell", Label: "Alerts", Path: "/alerts", Position: 60},
		{Icon: "bar-chart-2", Label: "Reports", Path: "/reports", Position: 70},
		{Icon: "settings", Label: "Settings", Path: "/settings", Position: 80},
	}
}
