// Package usersink forwards dashboard activity into a go-users activity sink.
package usersink

import (
	"context"
	"errors"

	"github.com/goliatone/go-pharmadash/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Namespace seeds the ids derived for staff and store identifiers that are
// not UUIDs, such as "pharmacist-7".
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:pharmadash:identity"))

// Sink is the go-users activity sink contract.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook maps activity events to go-users activity records. When Verbs is set
// only those verbs are forwarded.
type Hook struct {
	Sink  Sink
	Verbs []string
}

var _ activity.Hook = Hook{}

// Notify implements activity.Hook. Events without a verb are ignored.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return errors.New("usersink: sink is required")
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" || !h.forwards(evt.Verb) {
		return nil
	}
	data := make(map[string]any, len(evt.Metadata)+5)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	return h.Sink.Log(ctx, types.ActivityRecord{
		ActorID:    identity(data, "actor_ref", evt.ActorID),
		UserID:     identity(data, "user_ref", evt.UserID),
		TenantID:   identity(data, "tenant_ref", evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	})
}

func (h Hook) forwards(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, v := range h.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// identity parses raw as a UUID. Other non-empty values get a stable
// name-based id and are kept under refKey so the original stays searchable.
func identity(data map[string]any, refKey, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	data[refKey] = raw
	return uuid.NewSHA1(Namespace, []byte(raw))
}
