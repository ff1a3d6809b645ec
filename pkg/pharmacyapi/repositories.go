package pharmacyapi

import (
	"context"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// NewStatsSource adapts a client into the stats widget source.
func NewStatsSource(client StatsClient) dashboard.StatsSource {
	return &statsSource{client: client}
}

type statsSource struct {
	client StatsClient
}

func (s *statsSource) Stats(ctx context.Context, _ dashboard.ViewerContext) ([]dashboard.Stat, error) {
	return s.client.FetchStats(ctx)
}

// NewDispensingRepository adapts a client into the dispensing chart repository.
func NewDispensingRepository(client DispensingClient) dashboard.DispensingRepository {
	return &dispensingRepository{client: client}
}

type dispensingRepository struct {
	client DispensingClient
}

func (r *dispensingRepository) FetchDispensing(ctx context.Context, query dashboard.DispensingQuery) ([]dashboard.DispensingPoint, error) {
	return r.client.FetchDispensing(ctx, query.Days)
}

// NewAlertStore adapts a client into the dashboard alert collaborator.
func NewAlertStore(client AlertClient) dashboard.AlertStore {
	return &alertStore{client: client}
}

type alertStore struct {
	client AlertClient
}

func (s *alertStore) OpenAlerts(ctx context.Context) ([]dashboard.Alert, error) {
	return s.client.FetchAlerts(ctx)
}

func (s *alertStore) Alert(ctx context.Context, id string) (dashboard.Alert, error) {
	if id == "" {
		return dashboard.Alert{}, dashboard.ErrAlertIDRequired
	}
	return s.client.FetchAlert(ctx, id)
}

func (s *alertStore) TakeAction(ctx context.Context, alertID, notes string) (dashboard.AlertResolution, error) {
	if alertID == "" {
		return dashboard.AlertResolution{}, dashboard.ErrAlertIDRequired
	}
	return s.client.ResolveAlert(ctx, alertID, notes)
}

// OpenCount feeds alert badges.
func (s *alertStore) OpenCount(ctx context.Context) (int, error) {
	alerts, err := s.client.FetchAlerts(ctx)
	if err != nil {
		return 0, err
	}
	return len(alerts), nil
}
