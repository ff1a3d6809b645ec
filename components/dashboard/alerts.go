package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AlertType is the severity attached to an alert. Values outside the known
// set are kept verbatim and fall into the default presentation branch.
type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

var (
	// ErrAlertNotFound is returned when an alert id does not resolve.
	ErrAlertNotFound = errors.New("dashboard: alert not found")
	// ErrAlertIDRequired guards store lookups with an empty id.
	ErrAlertIDRequired = errors.New("dashboard: alert id is required")
)

// Alert is an actionable notification with a recommended remedial action.
type Alert struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Type        AlertType `json:"type" yaml:"type"`
	Action      string    `json:"action" yaml:"action"`
}

// AlertIcon is the symbolic icon + color tag rendered in the dialog header.
type AlertIcon struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AlertIconFor maps an alert type to its header icon. Unknown types resolve to
// the confirmation icon.
func AlertIconFor(t AlertType) AlertIcon {
	switch t {
	case AlertCritical:
		return AlertIcon{Name: "alert-triangle", Color: "red"}
	case AlertWarning:
		return AlertIcon{Name: "alert-triangle", Color: "orange"}
	default:
		return AlertIcon{Name: "check-circle", Color: "blue"}
	}
}

// AlertResolution records an action taken against an alert.
type AlertResolution struct {
	ID         string    `json:"id"`
	AlertID    string    `json:"alert_id"`
	Notes      string    `json:"notes,omitempty"`
	ResolvedBy string    `json:"resolved_by,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// AlertStore is the alert data collaborator. It supplies alerts and receives
// the action taken from the dialog.
type AlertStore interface {
	OpenAlerts(ctx context.Context) ([]Alert, error)
	Alert(ctx context.Context, id string) (Alert, error)
	TakeAction(ctx context.Context, alertID, notes string) (AlertResolution, error)
}

// InMemoryAlertStore keeps mock alerts in memory.
type InMemoryAlertStore struct {
	mu          sync.RWMutex
	alerts      map[string]Alert
	order       []string
	resolutions map[string]AlertResolution
	now         func() time.Time
}

// NewInMemoryAlertStore seeds the store with the provided alerts.
func NewInMemoryAlertStore(alerts []Alert) *InMemoryAlertStore {
	s := &InMemoryAlertStore{
		alerts:      make(map[string]Alert, len(alerts)),
		resolutions: map[string]AlertResolution{},
		now:         time.Now,
	}
	for _, alert := range alerts {
		if alert.ID == "" {
			continue
		}
		if _, exists := s.alerts[alert.ID]; !exists {
			s.order = append(s.order, alert.ID)
		}
		s.alerts[alert.ID] = alert
	}
	return s
}

// OpenAlerts lists unresolved alerts, critical first then by insertion order.
func (s *InMemoryAlertStore) OpenAlerts(_ context.Context) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, 0, len(s.order))
	for _, id := range s.order {
		if _, resolved := s.resolutions[id]; resolved {
			continue
		}
		out = append(out, s.alerts[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return alertRank(out[i].Type) < alertRank(out[j].Type)
	})
	return out, nil
}

// Alert returns a single alert, resolved or not.
func (s *InMemoryAlertStore) Alert(_ context.Context, id string) (Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Alert{}, ErrAlertIDRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	return alert, nil
}

// TakeAction marks the alert resolved with the supplied notes. Acting on an
// already resolved alert replaces the previous resolution.
func (s *InMemoryAlertStore) TakeAction(ctx context.Context, alertID, notes string) (AlertResolution, error) {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return AlertResolution{}, ErrAlertIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alertID]; !ok {
		return AlertResolution{}, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	resolution := AlertResolution{
		ID:         uuid.NewString(),
		AlertID:    alertID,
		Notes:      notes,
		ResolvedBy: ActivityFromContext(ctx).UserID,
		ResolvedAt: s.now().UTC(),
	}
	s.resolutions[alertID] = resolution
	return resolution, nil
}

// Resolution returns the recorded resolution for an alert.
func (s *InMemoryAlertStore) Resolution(alertID string) (AlertResolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resolutions[alertID]
	return res, ok
}

// OpenCount is used as the badge source for alert navigation entries.
func (s *InMemoryAlertStore) OpenCount(ctx context.Context) (int, error) {
	alerts, err := s.OpenAlerts(ctx)
	if err != nil {
		return 0, err
	}
	return len(alerts), nil
}

func alertRank(t AlertType) int {
	switch t {
	case AlertCritical:
		return 0
	case AlertWarning:
		return 1
	default:
		return 2
	}
}

// DefaultAlerts returns the mock alerts shown by the demo dashboard.
func DefaultAlerts() []Alert {
	return []Alert{
		{
			ID:          "alert-001",
			Title:       "Critical stock: Amoxicillin 500mg",
			Description: "Only 12 units remain, below the minimum threshold of 50.",
			Type:        AlertCritical,
			Action:      "Place an emergency order with the primary supplier.",
		},
		{
			ID:          "alert-002",
			Title:       "Expiring batch: Insulin Glargine",
			Description: "Batch IG-2291 expires in 14 days (36 units).",
			Type:        AlertWarning,
			Action:      "Move the batch to the front shelf and notify the pharmacist in charge.",
		},
		{
			ID:          "alert-003",
			Title:       "Prescription refill requests",
			Description: "8 refill requests are waiting for pharmacist review.",
			Type:        AlertInfo,
			Action:      "Review the refill queue.",
		},
	}
}
