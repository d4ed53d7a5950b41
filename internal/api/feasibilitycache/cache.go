package feasibilitycache

import (
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	// DefaultTTL bounds staleness of a cached verdict; visa and safety rules
	// change slowly, so a day is acceptable.
	DefaultTTL = 24 * time.Hour
	// DefaultCapacity bounds memory; the oldest entry by timestamp is evicted
	// before an insert at capacity.
	DefaultCapacity = 1000
)

type entry struct {
	report    *types.FeasibilityReport
	timestamp time.Time
	hitCount  int
}

// Cache serves repeated (passport, destination-country) feasibility lookups
// without re-invoking the AI. Keys are normalized at country granularity so
// "Tokyo, Japan" and "Japan" share a bucket.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func New() *Cache {
	return NewWithOptions(DefaultTTL, DefaultCapacity, time.Now)
}

// NewWithOptions exists so tests can construct isolated instances with a
// simulated clock.
func NewWithOptions(ttl time.Duration, capacity int, now func() time.Time) *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		capacity: capacity,
		now:      now,
	}
}

// Key normalizes a (passport, destination) pair into the cache key.
// Destination strings like "Tokyo, Japan" fold to the country segment.
func Key(passport, destination string) string {
	return normalize(passport) + ":" + normalizeCountry(destination)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeCountry(s string) string {
	s = normalize(s)
	if idx := strings.LastIndex(s, ","); idx >= 0 {
		s = strings.TrimSpace(s[idx+1:])
	}
	return s
}

// Get returns the cached report or nil on miss. An entry whose age has reached
// the TTL counts as expired and is evicted on read.
func (c *Cache) Get(passport, destination string) *types.FeasibilityReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(passport, destination)
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil
	}
	e.hitCount++
	return e.report
}

// Set stores a report under the normalized key, evicting the single oldest
// entry by timestamp when at capacity.
func (c *Cache) Set(passport, destination string, report *types.FeasibilityReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(passport, destination)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = &entry{report: report, timestamp: c.now()}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.timestamp.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.timestamp
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len reports the live entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HitCount reports how many reads an entry has served, for metrics.
func (c *Cache) HitCount(passport, destination string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[Key(passport, destination)]; ok {
		return e.hitCount
	}
	return 0
}
