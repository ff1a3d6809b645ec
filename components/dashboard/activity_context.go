package dashboard

import "context"

// ActivityContext identifies who performed an operation. ActorID differs from
// UserID when someone acts on another user's behalf, e.g. a technician
// working under the pharmacist on duty.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityKey struct{}

// ContextWithActivity attaches meta to ctx.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityKey{}, meta)
}

// ActivityFromContext returns the identifiers on ctx, or the zero value.
func ActivityFromContext(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	meta, _ := ctx.Value(activityKey{}).(ActivityContext)
	return meta
}

// overlay replaces the fields of a that are set in b.
func (a ActivityContext) overlay(b ActivityContext) ActivityContext {
	if b.ActorID != "" {
		a.ActorID = b.ActorID
	}
	if b.UserID != "" {
		a.UserID = b.UserID
	}
	if b.TenantID != "" {
		a.TenantID = b.TenantID
	}
	return a
}

func withActivityIDs(ctx context.Context, actorID, userID, tenantID string) context.Context {
	ids := ActivityContext{ActorID: actorID, UserID: userID, TenantID: tenantID}
	if ids == (ActivityContext{}) {
		return ctx
	}
	return ContextWithActivity(ctx, ActivityFromContext(ctx).overlay(ids))
}
