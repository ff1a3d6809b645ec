package dashboard

import (
	"context"
	"errors"
	"sync"
)

var errPreferenceViewer = errors.New("dashboard: preferences need a viewer user id")

// InMemoryPreferenceStore keeps each viewer's layout overrides in memory.
// Viewers without a user id always get empty overrides.
type InMemoryPreferenceStore struct {
	mu    sync.RWMutex
	users map[string]LayoutOverrides
}

func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{users: map[string]LayoutOverrides{}}
}

// LayoutOverrides returns a copy of the viewer's overrides.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	s.mu.RLock()
	saved, ok := s.users[viewer.UserID]
	s.mu.RUnlock()
	if viewer.UserID == "" || !ok {
		return LayoutOverrides{AreaOrder: map[string][]string{}, HiddenWidgets: map[string]bool{}}, nil
	}
	return normalizeOverrides(saved), nil
}

// SaveLayoutOverrides replaces the viewer's overrides.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errPreferenceViewer
	}
	overrides = normalizeOverrides(overrides)
	s.mu.Lock()
	s.users[viewer.UserID] = overrides
	s.mu.Unlock()
	return nil
}

// normalizeOverrides returns a deep copy without empty area orders, repeated
// ids or widgets explicitly marked visible.
func normalizeOverrides(in LayoutOverrides) LayoutOverrides {
	out := LayoutOverrides{
		AreaOrder:     make(map[string][]string, len(in.AreaOrder)),
		HiddenWidgets: make(map[string]bool, len(in.HiddenWidgets)),
	}
	for area, ids := range in.AreaOrder {
		seen := make(map[string]bool, len(ids))
		order := make([]string, 0, len(ids))
		for _, id := range ids {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			order = append(order, id)
		}
		if len(order) > 0 {
			out.AreaOrder[area] = order
		}
	}
	for id, hidden := range in.HiddenWidgets {
		if hidden {
			out.HiddenWidgets[id] = true
		}
	}
	return out
}
