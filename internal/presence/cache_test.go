package presence

import (
	"sort"
	"testing"
	"time"
)

func TestCacheTouchAndViewers(t *testing.T) {
	cache := NewCache(30 * time.Second)
	cache.Touch("c1", "doctor-1")
	cache.Touch("c1", "patient-1")
	cache.Touch("c2", "doctor-2")

	viewers := cache.Viewers("c1")
	sort.Strings(viewers)
	if len(viewers) != 2 || viewers[0] != "doctor-1" || viewers[1] != "patient-1" {
		t.Fatalf("viewers = %v", viewers)
	}
	if got := cache.Viewers("c2"); len(got) != 1 {
		t.Fatalf("c2 viewers = %v", got)
	}
	if got := cache.Viewers("missing"); len(got) != 0 {
		t.Fatalf("missing consultation viewers = %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := NewCache(30 * time.Second)
	cache.now = func() time.Time { return now }

	cache.Touch("c1", "doctor-1")
	cache.Touch("c1", "patient-1")

	// Refresh only the doctor, then advance past the TTL for the patient.
	now = now.Add(20 * time.Second)
	cache.Touch("c1", "doctor-1")
	now = now.Add(15 * time.Second)

	viewers := cache.Viewers("c1")
	if len(viewers) != 1 || viewers[0] != "doctor-1" {
		t.Fatalf("viewers = %v", viewers)
	}

	now = now.Add(31 * time.Second)
	if got := cache.Viewers("c1"); len(got) != 0 {
		t.Fatalf("all viewers should have expired, got %v", got)
	}
}

func TestCacheLeave(t *testing.T) {
	cache := NewCache(30 * time.Second)
	cache.Touch("c1", "doctor-1")
	cache.Touch("c1", "patient-1")

	cache.Leave("c1", "patient-1")
	viewers := cache.Viewers("c1")
	if len(viewers) != 1 || viewers[0] != "doctor-1" {
		t.Fatalf("viewers = %v", viewers)
	}

	cache.Leave("c1", "doctor-1")
	if got := cache.Viewers("c1"); len(got) != 0 {
		t.Fatalf("viewers = %v", got)
	}
	// Leaving an unknown consultation is a no-op.
	cache.Leave("missing", "nobody")
}

func TestCacheDefaultTTL(t *testing.T) {
	cache := NewCache(0)
	if cache.ttl != 30*time.Second {
		t.Fatalf("ttl = %v, want 30s", cache.ttl)
	}
}
