package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryWidgetStore is a process-local WidgetStore. Widget placement is not
// persisted across restarts.
type MemoryWidgetStore struct {
	mu          sync.Mutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]memoryInstance
	assignments map[string][]string
	now         func() time.Time
}

type memoryInstance struct {
	instance   WidgetInstance
	visibility WidgetVisibility
}

// NewMemoryWidgetStore builds an empty store.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]memoryInstance{},
		assignments: map[string][]string{},
		now:         time.Now,
	}
}

// EnsureArea stores the area, returning true when it was new.
func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, ErrAreaRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition stores the definition, returning true when it was new.
func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, ErrDefinitionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new widget instance with a generated id.
func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[input.DefinitionID]; !ok {
		return WidgetInstance{}, fmt.Errorf("dashboard: widget definition %s not registered", input.DefinitionID)
	}
	instance := WidgetInstance{
		ID:            uuid.NewString(),
		DefinitionID:  input.DefinitionID,
		Configuration: input.Configuration,
		Metadata:      input.Metadata,
	}
	s.instances[instance.ID] = memoryInstance{instance: instance, visibility: input.Visibility}
	return instance, nil
}

// DeleteInstance removes the instance and its area assignment.
func (s *MemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("dashboard: widget %s not found", instanceID)
	}
	delete(s.instances, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = slices.DeleteFunc(ids, func(id string) bool { return id == instanceID })
	}
	return nil
}

// UpdateInstance replaces configuration and metadata of a stored instance.
func (s *MemoryWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("dashboard: widget %s not found", input.InstanceID)
	}
	if input.Precondition != nil {
		if err := input.Precondition(entry.instance); err != nil {
			return WidgetInstance{}, err
		}
	}
	if input.Configuration != nil {
		entry.instance.Configuration = cloneMap(input.Configuration)
	}
	if input.Metadata != nil {
		entry.instance.Metadata = cloneMap(input.Metadata)
	}
	s.instances[input.InstanceID] = entry
	updated := entry.instance
	updated.AreaCode = s.areaOf(input.InstanceID)
	return updated, nil
}

func (s *MemoryWidgetStore) areaOf(instanceID string) string {
	for area, ids := range s.assignments {
		if slices.Contains(ids, instanceID) {
			return area
		}
	}
	return ""
}

// AssignInstance places the instance in an area, at Position when given.
func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[input.AreaCode]; !ok {
		return fmt.Errorf("dashboard: area %s not registered", input.AreaCode)
	}
	if _, ok := s.instances[input.InstanceID]; !ok {
		return fmt.Errorf("dashboard: widget %s not found", input.InstanceID)
	}
	order := slices.DeleteFunc(s.assignments[input.AreaCode], func(id string) bool { return id == input.InstanceID })
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		order = slices.Insert(order, *input.Position, input.InstanceID)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// ReorderArea applies the given order; unknown ids are dropped and missing
// ids keep their relative order at the end.
func (s *MemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, len(current))
	for i, id := range current {
		widgets[i] = WidgetInstance{ID: id}
	}
	ordered := arrange(widgets, input.WidgetIDs, nil)
	ids := make([]string, len(ordered))
	for i, w := range ordered {
		ids[i] = w.ID
	}
	s.assignments[input.AreaCode] = ids
	return nil
}

// ResolveArea returns the visible instances of an area in order.
func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		entry, ok := s.instances[id]
		if !ok || !entry.visibility.visible(now, input.Audience) {
			continue
		}
		inst := entry.instance
		inst.AreaCode = input.AreaCode
		inst.Configuration = cloneMap(inst.Configuration)
		inst.Metadata = cloneMap(inst.Metadata)
		widgets = append(widgets, inst)
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
}

func (v WidgetVisibility) visible(now time.Time, audience []string) bool {
	if v.StartAt != nil && now.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && now.After(*v.EndAt) {
		return false
	}
	if len(v.Roles) == 0 {
		return true
	}
	for _, role := range v.Roles {
		if slices.Contains(audience, role) {
			return true
		}
	}
	return false
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
