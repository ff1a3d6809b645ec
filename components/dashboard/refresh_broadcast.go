package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 16

// RefreshHooks fans one widget event out to several hooks. Every hook is
// called; their errors are joined.
type RefreshHooks []RefreshHook

// WidgetUpdated implements RefreshHook.
func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		errs = errors.Join(errs, hook.WidgetUpdated(ctx, event))
	}
	return errs
}

// RefreshHookFunc adapts a function into a RefreshHook.
type RefreshHookFunc func(ctx context.Context, event WidgetEvent) error

// WidgetUpdated calls f(ctx, event).
func (f RefreshHookFunc) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	return f(ctx, event)
}

// BroadcastHook pushes widget events to live page subscribers, such as the
// alerts panel reloading after a resolution. Slow subscribers lose events
// rather than block the request that produced them.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]subscriber
	next    int
	dropped atomic.Int64
}

type subscriber struct {
	ch    chan WidgetEvent
	areas map[string]struct{}
}

func (s subscriber) wants(event WidgetEvent) bool {
	if len(s.areas) == 0 || event.AreaCode == "" {
		return true
	}
	_, ok := s.areas[event.AreaCode]
	return ok
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: map[int]subscriber{}}
}

// WidgetUpdated implements RefreshHook.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a subscriber. With area codes given only events for
// those areas are delivered; events without an area always are. The cancel
// func closes the channel and is safe to call twice.
func (h *BroadcastHook) Subscribe(areas ...string) (<-chan WidgetEvent, func()) {
	sub := subscriber{ch: make(chan WidgetEvent, subscriberBuffer)}
	for _, area := range areas {
		if area = strings.TrimSpace(area); area != "" {
			if sub.areas == nil {
				sub.areas = map[string]struct{}{}
			}
			sub.areas[area] = struct{}{}
		}
	}
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports how many events were discarded for full subscribers.
func (h *BroadcastHook) Dropped() int64 {
	return h.dropped.Load()
}

func areasFromQuery(r *http.Request) []string {
	raw := r.URL.Query().Get("area")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket streams events as JSON over a WebSocket for net/http hosts.
// The optional ?area=a,b query narrows the stream.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(areasFromQuery(r)...)
	defer cancel()
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams events as Server-Sent Events named after the event reason.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	events, cancel := h.Subscribe(areasFromQuery(r)...)
	defer cancel()
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", sseEventName(event), payload); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func sseEventName(event WidgetEvent) string {
	if event.Reason == "" {
		return "widget"
	}
	return event.Reason
}
