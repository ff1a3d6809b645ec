package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
)

// OpenAlertsInput filters the open alert list. Empty Types returns every type.
type OpenAlertsInput struct {
	Types []dashboard.AlertType
	Limit int
}

type alertLister interface {
	OpenAlerts(ctx context.Context) ([]dashboard.Alert, error)
}

// OpenAlertsQuery lists unresolved alerts, critical first.
type OpenAlertsQuery struct {
	service alertLister
}

// NewOpenAlertsQuery builds the query.
func NewOpenAlertsQuery(service alertLister) *OpenAlertsQuery {
	return &OpenAlertsQuery{service: service}
}

var _ gocommand.Querier[OpenAlertsInput, []dashboard.Alert] = (*OpenAlertsQuery)(nil)

// Query returns open alerts matching input.
func (q *OpenAlertsQuery) Query(ctx context.Context, input OpenAlertsInput) ([]dashboard.Alert, error) {
	if q.service == nil {
		return nil, errNoService
	}
	alerts, err := q.service.OpenAlerts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dashboard.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if len(input.Types) > 0 && !hasType(input.Types, alert.Type) {
			continue
		}
		out = append(out, alert)
		if input.Limit > 0 && len(out) == input.Limit {
			break
		}
	}
	return out, nil
}

func hasType(types []dashboard.AlertType, t dashboard.AlertType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
