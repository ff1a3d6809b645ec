package dashboard

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML so repeated fetches are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered dispensing charts for a fixed time. Entries for
// an instance can be dropped early through Invalidate, which is how a widget
// refresh forces the next page load to re-render.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]renderedChart
}

type renderedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache. A ttl of zero or less disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]renderedChart{},
	}
}

// GetOrRender serves key from the cache or renders and stores it. Failed
// renders are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && now.Before(entry.expires) {
		c.mu.Unlock()
		return entry.html, nil
	}
	delete(c.entries, key)
	c.mu.Unlock()

	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = renderedChart{html: html, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// Invalidate drops every entry whose key starts with prefix and reports how
// many were removed. An empty prefix clears the cache.
func (c *ChartCache) Invalidate(prefix string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// WidgetUpdated implements RefreshHook. Any event for an instance evicts
// that instance's charts.
func (c *ChartCache) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	if event.Instance.ID == "" {
		return nil
	}
	c.Invalidate(chartKeyPrefix(event.Instance.ID))
	return nil
}

// Keys start with the instance id so events that only carry the id, such as
// a removal, still evict.
func chartKeyPrefix(instanceID string) string {
	return "chart:" + instanceID + ":"
}

func chartKey(instanceID, kind string, spec ChartSpec) string {
	return chartKeyPrefix(instanceID) + kind + ":" + digest(spec)
}

// digest returns a stable hash of v's JSON form. encoding/json sorts map
// keys, so equal maps hash equally.
func digest(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
