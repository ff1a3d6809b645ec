package dashboard

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func receive(t *testing.T, ch <-chan WidgetEvent) (WidgetEvent, bool) {
	t.Helper()
	select {
	case e, ok := <-ch:
		return e, ok
	default:
		return WidgetEvent{}, false
	}
}

func TestBroadcastHookDeliversToSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()

	if err := hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaAlerts, Reason: "alert.resolved"}); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	e, ok := receive(t, ch)
	if !ok || e.AreaCode != AreaAlerts || e.Reason != "alert.resolved" {
		t.Fatalf("unexpected delivery %+v (ok=%v)", e, ok)
	}
}

func TestBroadcastHookFiltersByArea(t *testing.T) {
	hook := NewBroadcastHook()
	alerts, cancel := hook.Subscribe(AreaAlerts, " ")
	defer cancel()

	ctx := context.Background()
	_ = hook.WidgetUpdated(ctx, WidgetEvent{AreaCode: AreaStats, Reason: "refresh"})
	if e, ok := receive(t, alerts); ok {
		t.Fatalf("stats event leaked to alerts subscriber: %+v", e)
	}
	_ = hook.WidgetUpdated(ctx, WidgetEvent{Reason: "refresh"})
	if _, ok := receive(t, alerts); !ok {
		t.Fatalf("expected area-less event to reach every subscriber")
	}
}

func TestBroadcastHookDropsForFullSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		_ = hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "refresh"})
	}
	if hook.Dropped() != 3 {
		t.Fatalf("expected 3 dropped events, got %d", hook.Dropped())
	}
}

func TestBroadcastHookCancelIsIdempotent(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if hook.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", hook.Subscribers())
	}
}

type failingRefreshHook struct{ calls int }

func (h *failingRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	h.calls++
	return errors.New("unavailable")
}

func TestRefreshHooksCallsEveryHook(t *testing.T) {
	failing := &failingRefreshHook{}
	broadcast := NewBroadcastHook()
	ch, cancel := broadcast.Subscribe()
	defer cancel()

	err := RefreshHooks{failing, nil, broadcast}.WidgetUpdated(context.Background(), WidgetEvent{Reason: "add"})
	if err == nil || failing.calls != 1 {
		t.Fatalf("expected joined error after calling failing hook, got %v", err)
	}
	if _, ok := receive(t, ch); !ok {
		t.Fatalf("expected broadcast to run after a failing hook")
	}
}

func TestServeWebSocketStreamsEvents(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?area=" + AreaAlerts
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hook.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaAlerts, Reason: "alert.resolved"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got WidgetEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Reason != "alert.resolved" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestServeSSENamesEvents(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	for hook.Subscribers() == 0 && ctx.Err() == nil {
		time.Sleep(5 * time.Millisecond)
	}
	_ = hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaInsights, Reason: "refresh"})

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(line) != "event: refresh" {
		t.Fatalf("unexpected first line %q", line)
	}
}
