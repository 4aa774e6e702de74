// Package ttlcache provides a bounded, TTL-aware in-memory cache with a hybrid
// recency and frequency eviction policy. Expired entries are removed lazily by
// a sweep that runs at most once per cleanup interval, piggybacking on Get and Set.
package ttlcache

import (
	"container/list"
	"sync"
	"time"
)

// Defaults match the process-wide result cache of the analysis service.
const (
	DefaultMaxSize         = 1000
	DefaultCleanupInterval = 5 * time.Minute
)

// Clock is the time source used for expiry and access bookkeeping.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// entry is the value holder for a single key.
type entry[V any] struct {
	key          string
	value        V
	expiry       time.Time // zero means the entry never expires
	lastAccessed time.Time
	accessCount  uint64
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiry.IsZero() && now.After(e.expiry)
}

// Stats is a snapshot of the cumulative cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe bounded key-value store. The zero value is not usable;
// construct one with New.
type Cache[V any] struct {
	mu sync.Mutex

	items map[string]*list.Element
	order *list.List // front is least recently used, back is most recently used

	maxSize         int
	cleanupInterval time.Duration
	clock           Clock
	lastSweep       time.Time

	hits      uint64
	misses    uint64
	evictions uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	maxSize         int
	cleanupInterval time.Duration
	clock           Clock
}

// WithMaxSize bounds the number of entries. Non-positive values keep the default.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithCleanupInterval sets the minimum spacing between expiry sweeps.
// Zero sweeps on every call. Negative values keep the default.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.cleanupInterval = d
		}
	}
}

// WithClock replaces the wall clock, typically with a virtual clock in tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	o := options{
		maxSize:         DefaultMaxSize,
		cleanupInterval: DefaultCleanupInterval,
		clock:           wallClock{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		items:           make(map[string]*list.Element),
		order:           list.New(),
		maxSize:         o.maxSize,
		cleanupInterval: o.cleanupInterval,
		clock:           o.clock,
		lastSweep:       o.clock.Now(),
	}
}

// Get returns the value for key and whether it was found.
// A hit refreshes the entry's recency and access count.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.sweepLocked(now)

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	e := el.Value.(*entry[V])
	if e.expired(now) {
		c.removeLocked(el)
		c.evictions++
		c.misses++
		return zero, false
	}

	e.lastAccessed = now
	e.accessCount++
	c.hits++
	c.order.MoveToBack(el)
	return e.value, true
}

// Set stores value under key with no expiry.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key. A positive ttl sets an absolute expiry of now+ttl;
// otherwise the entry never expires. A full cache evicts one entry first, even when
// key is already present. Existing entries are replaced, not refreshed.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.sweepLocked(now)

	if len(c.items) >= c.maxSize {
		c.evictOneLocked()
	}
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}

	e := &entry[V]{
		key:          key,
		value:        value,
		lastAccessed: now,
	}
	if ttl > 0 {
		e.expiry = now.Add(ttl)
	}
	c.items[key] = c.order.PushBack(e)
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Clear removes every entry and resets all counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions}
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// MaxSize returns the capacity bound.
func (c *Cache[V]) MaxSize() int {
	return c.maxSize
}

// sweepLocked removes all expired entries if the cleanup interval has elapsed.
func (c *Cache[V]) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < c.cleanupInterval {
		return
	}
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry[V]).expired(now) {
			c.removeLocked(el)
			c.evictions++
		}
		el = next
	}
	c.lastSweep = now
}

// evictOneLocked removes the entry with the oldest lastAccessed. Among equally
// stale entries the one with more reads goes first, then the least recent position.
func (c *Cache[V]) evictOneLocked() {
	var victim *list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		if victim == nil || evictsBefore(el.Value.(*entry[V]), victim.Value.(*entry[V])) {
			victim = el
		}
	}
	if victim == nil {
		return
	}
	c.removeLocked(victim)
	c.evictions++
}

func evictsBefore[V any](a, b *entry[V]) bool {
	if !a.lastAccessed.Equal(b.lastAccessed) {
		return a.lastAccessed.Before(b.lastAccessed)
	}
	return a.accessCount > b.accessCount
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	delete(c.items, el.Value.(*entry[V]).key)
	c.order.Remove(el)
}
