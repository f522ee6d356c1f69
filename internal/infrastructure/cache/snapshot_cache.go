package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
)

// TodayKey builds the cache key for the "today" endpoint snapshot of the given calendar date
func TodayKey(date time.Time) string {
	return "today:" + entity.FormatDate(date)
}

type entry struct {
	snapshot *entity.Snapshot
	storedAt time.Time
}

// SnapshotCache is a thread-safe in-memory TTL cache of exchange snapshots
type SnapshotCache struct {
	entries    map[string]entry
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewSnapshotCache creates a cache whose entries live for expiration. A non-positive expiration
// disables caching.
func NewSnapshotCache(expiration time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries:    make(map[string]entry),
		expiration: expiration,
		now:        time.Now,
	}
}

// DateKey builds the cache key for a historical snapshot
func DateKey(date time.Time) string {
	return "date:" + entity.FormatDate(date)
}

// Get returns the snapshot stored under key if present and not expired
func (c *SnapshotCache) Get(key string) *entity.Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil
	}
	return e.snapshot
}

// Put stores a snapshot under key
func (c *SnapshotCache) Put(key string, snapshot *entity.Snapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.expiration <= 0 || snapshot == nil {
		return
	}
	c.entries[key] = entry{snapshot: snapshot, storedAt: c.now()}
}

// Clear removes every entry
func (c *SnapshotCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]entry)
}

// Size returns the number of stored entries, expired ones included
func (c *SnapshotCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *SnapshotCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

func (c *SnapshotCache) expired(e entry) bool {
	return c.now().Sub(e.storedAt) > c.expiration
}
