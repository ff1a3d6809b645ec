package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksDropIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture, nil}

	incomplete := []Event{
		{},
		{Verb: VerbAlertResolved, ObjectType: ObjectAlert},
		{Verb: VerbAlertResolved, ObjectID: "alert-001"},
		{ObjectType: ObjectAlert, ObjectID: "alert-001"},
		{Verb: "  ", ObjectType: ObjectAlert, ObjectID: "alert-001"},
	}
	for _, evt := range incomplete {
		require.NoError(t, hooks.Notify(context.Background(), evt))
	}
	assert.Empty(t, capture.Events)

	require.NoError(t, hooks.Notify(context.Background(), Event{
		Verb:       " " + VerbAlertResolved + " ",
		ObjectType: " alert ",
		ObjectID:   " alert-001 ",
	}))
	require.Len(t, capture.Events, 1)
	got := capture.Events[0]
	assert.Equal(t, VerbAlertResolved, got.Verb)
	assert.Equal(t, ObjectAlert, got.ObjectType)
	assert.Equal(t, "alert-001", got.ObjectID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestHooksJoinErrorsAndKeepDelivering(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return errors.New("audit log offline") }),
		capture,
	}
	err := hooks.Notify(context.Background(), Event{Verb: VerbWidgetAdded, ObjectType: ObjectWidget, ObjectID: "w-1"})
	assert.ErrorContains(t, err, "audit log offline")
	assert.Len(t, capture.Events, 1)
}

func TestNormalizeEventCopiesMutableFields(t *testing.T) {
	at := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	evt := Event{
		Verb:       VerbAlertResolved,
		ObjectType: ObjectAlert,
		ObjectID:   "alert-002",
		Metadata:   map[string]any{"notes": "moved to front shelf"},
		Recipients: []string{"store-manager@example.com"},
		OccurredAt: at,
	}
	n := NormalizeEvent(evt)
	n.Metadata["notes"] = "changed"
	n.Recipients[0] = "someone-else@example.com"

	assert.Equal(t, "moved to front shelf", evt.Metadata["notes"])
	assert.Equal(t, "store-manager@example.com", evt.Recipients[0])
	assert.True(t, n.OccurredAt.Equal(at))
}
