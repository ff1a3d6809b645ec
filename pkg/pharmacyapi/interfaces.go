package pharmacyapi

import (
	"context"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// StatsClient fetches the headline metrics from the pharmacy backend.
type StatsClient interface {
	FetchStats(ctx context.Context) ([]dashboard.Stat, error)
}

// DispensingClient fetches daily dispensing counts.
type DispensingClient interface {
	FetchDispensing(ctx context.Context, days int) ([]dashboard.DispensingPoint, error)
}

// AlertClient reads open alerts and submits the action taken on one.
type AlertClient interface {
	FetchAlerts(ctx context.Context) ([]dashboard.Alert, error)
	FetchAlert(ctx context.Context, id string) (dashboard.Alert, error)
	ResolveAlert(ctx context.Context, id, notes string) (dashboard.AlertResolution, error)
}

// Client is a convenience union for backends that implement every call.
type Client interface {
	StatsClient
	DispensingClient
	AlertClient
}
