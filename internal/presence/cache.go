package presence

import (
	"sync"
	"time"
)

// Cache tracks which viewers are currently watching a consultation. Entries
// expire after the TTL unless refreshed by another heartbeat.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]map[string]time.Time // consultation -> viewer -> last seen
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]map[string]time.Time),
		now:     time.Now,
	}
}

// Touch records a heartbeat from viewer on the consultation.
func (c *Cache) Touch(consultationID, viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	viewers, ok := c.entries[consultationID]
	if !ok {
		viewers = make(map[string]time.Time)
		c.entries[consultationID] = viewers
	}
	viewers[viewerID] = c.now()
}

// Leave removes the viewer immediately without waiting for expiry.
func (c *Cache) Leave(consultationID, viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	viewers, ok := c.entries[consultationID]
	if !ok {
		return
	}
	delete(viewers, viewerID)
	if len(viewers) == 0 {
		delete(c.entries, consultationID)
	}
}

// Viewers returns the ids of viewers seen within the TTL, evicting stale
// entries as a side effect.
func (c *Cache) Viewers(consultationID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	viewers, ok := c.entries[consultationID]
	if !ok {
		return []string{}
	}
	cutoff := c.now().Add(-c.ttl)
	out := make([]string, 0, len(viewers))
	for id, seen := range viewers {
		if seen.Before(cutoff) {
			delete(viewers, id)
			continue
		}
		out = append(out, id)
	}
	if len(viewers) == 0 {
		delete(c.entries, consultationID)
	}
	return out
}
