package ttlcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(clock Clock, maxSize int, interval time.Duration) *Cache[string] {
	return New[string](WithClock(clock), WithMaxSize(maxSize), WithCleanupInterval(interval))
}

func TestNewDefaults(t *testing.T) {
	c := New[int]()
	assert.Equal(t, DefaultMaxSize, c.MaxSize())
	assert.Equal(t, DefaultCleanupInterval, c.cleanupInterval)
	assert.Equal(t, 0, c.Len())

	// Invalid options keep the defaults
	c = New[int](WithMaxSize(0), WithCleanupInterval(-time.Second), WithClock(nil))
	assert.Equal(t, DefaultMaxSize, c.MaxSize())
	assert.Equal(t, DefaultCleanupInterval, c.cleanupInterval)
	assert.NotNil(t, c.clock)
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(newFakeClock(), 10, time.Minute)

	for _, key := range []string{"a", "b", "a"} {
		v, ok := c.Get(key)
		assert.False(t, ok)
		assert.Empty(t, v)
	}
	assert.Equal(t, Stats{Misses: 3}, c.Stats())
}

func TestSetThenGet(t *testing.T) {
	c := newTestCache(newFakeClock(), 10, time.Minute)

	c.Set("key", "value")
	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)
	assert.Equal(t, Stats{Hits: 1}, c.Stats())
}

func TestGetUpdatesAccessMetadata(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 10, time.Hour)

	c.Set("key", "value")
	clock.Advance(time.Second)
	_, _ = c.Get("key")
	clock.Advance(time.Second)
	_, _ = c.Get("key")

	e := c.items["key"].Value.(*entry[string])
	assert.Equal(t, uint64(2), e.accessCount)
	assert.Equal(t, clock.Now(), e.lastAccessed)
}

func TestExpiryOnGet(t *testing.T) {
	clock := newFakeClock()
	// Sweep interval longer than the TTL so Get sees the expired entry itself.
	c := newTestCache(clock, 10, time.Hour)

	c.SetWithTTL("key", "value", 10*time.Second)
	clock.Advance(10 * time.Second)
	v, ok := c.Get("key")
	require.True(t, ok, "entry is still valid at exactly its expiry")
	assert.Equal(t, "value", v)

	clock.Advance(time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Evictions: 1}, c.Stats())
	assert.Equal(t, 0, c.Len())

	// A later Get for the same key is a plain miss.
	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestExpiryOnSweep(t *testing.T) {
	tests := []struct {
		name string
		op   func(c *Cache[string])
	}{
		{"get triggers sweep", func(c *Cache[string]) { _, _ = c.Get("other") }},
		{"set triggers sweep", func(c *Cache[string]) { c.Set("other", "v") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := newTestCache(clock, 10, 30*time.Second)

			c.SetWithTTL("a", "1", 10*time.Second)
			c.SetWithTTL("b", "2", 10*time.Second)
			c.Set("keep", "3")

			clock.Advance(31 * time.Second)
			tt.op(c)

			assert.Equal(t, uint64(2), c.Stats().Evictions)
			_, ok := c.items["a"]
			assert.False(t, ok)
			_, ok = c.items["keep"]
			assert.True(t, ok)

			// Reading the expired key afterwards does not count it again.
			_, ok = c.Get("a")
			assert.False(t, ok)
			assert.Equal(t, uint64(2), c.Stats().Evictions)
		})
	}
}

func TestSweepRespectsInterval(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 10, time.Minute)

	c.SetWithTTL("a", "1", time.Second)
	clock.Advance(2 * time.Second)

	// Interval has not elapsed, so the sweep is a no-op and the entry stays.
	c.Set("b", "2")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(0), c.Stats().Evictions)

	clock.Advance(time.Minute)
	c.Set("c", "3")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestSweepRecordsTimestampWithoutRemovals(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 10, time.Minute)

	clock.Advance(2 * time.Minute)
	_, _ = c.Get("x")
	assert.Equal(t, clock.Now(), c.lastSweep)
}

func TestCapacityEviction(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 3, time.Hour)

	for i := range 4 {
		c.Set(fmt.Sprintf("k%d", i), "v")
		clock.Advance(time.Second)
	}

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
	_, ok := c.items["k0"]
	assert.False(t, ok, "oldest lastAccessed entry is evicted")
}

func TestEvictionScenario(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 2, time.Hour)

	c.Set("a", "A")
	clock.Advance(time.Second)
	c.Set("b", "B")
	clock.Advance(time.Second)
	_, ok := c.Get("a")
	require.True(t, ok)
	clock.Advance(time.Second)
	c.Set("c", "C")

	_, ok = c.items["b"]
	assert.False(t, ok, "b should be evicted")
	_, ok = c.items["a"]
	assert.True(t, ok)
	_, ok = c.items["c"]
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestEvictionTieBreakByAccessCount(t *testing.T) {
	tests := []struct {
		name    string
		reads   map[string]int
		evicted string
	}{
		{"more reads goes first", map[string]int{"a": 1, "b": 2}, "b"},
		{"unread entry stays", map[string]int{"a": 1}, "a"},
		{"equal reads fall back to LRU position", map[string]int{"b": 1, "a": 1}, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := newTestCache(clock, 2, time.Hour)

			c.Set("a", "A")
			c.Set("b", "B")
			for _, key := range []string{"a", "b"} {
				for range tt.reads[key] {
					_, ok := c.Get(key)
					require.True(t, ok)
				}
			}

			// Every entry shares the frozen lastAccessed.
			c.Set("c", "C")
			_, ok := c.items[tt.evicted]
			assert.False(t, ok, "%s should be evicted", tt.evicted)
			assert.Equal(t, 2, c.Len())
			assert.Equal(t, uint64(1), c.Stats().Evictions)
		})
	}
}

func TestOverwriteAtCapacityEvicts(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 2, time.Hour)

	c.Set("a", "A")
	clock.Advance(time.Second)
	c.Set("b", "B")
	clock.Advance(time.Second)
	c.SetWithTTL("b", "B2", time.Minute)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
	_, ok := c.items["a"]
	assert.False(t, ok, "a has the oldest lastAccessed")

	e := c.items["b"].Value.(*entry[string])
	assert.Equal(t, "B2", e.value)
	assert.Equal(t, uint64(0), e.accessCount, "overwrite resets access metadata")
	assert.Equal(t, clock.Now().Add(time.Minute), e.expiry)
	assert.Equal(t, e, c.order.Back().Value, "overwrite moves the key to the MRU position")
}

func TestOverwriteEvictsItself(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 2, time.Hour)

	c.Set("a", "A")
	clock.Advance(time.Second)
	c.Set("b", "B")
	c.Set("a", "A2")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", v)
}

func TestOverwriteBelowCapacity(t *testing.T) {
	c := newTestCache(newFakeClock(), 3, time.Hour)

	c.Set("a", "A")
	c.Set("b", "B")
	c.Set("a", "A2")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(0), c.Stats().Evictions)
}

func TestDelete(t *testing.T) {
	c := newTestCache(newFakeClock(), 10, time.Hour)

	c.Set("a", "A")
	c.Delete("a")
	c.Delete("missing")

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestClear(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 2, time.Hour)

	c.Set("a", "A")
	c.Set("b", "B")
	c.Set("c", "C")
	_, _ = c.Get("c")
	_, _ = c.Get("zzz")
	require.NotEqual(t, Stats{}, c.Stats())

	c.Clear()
	assert.Equal(t, Stats{}, c.Stats())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.order.Len())

	// Cache stays usable after clearing.
	c.Set("a", "A")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](WithMaxSize(50), WithCleanupInterval(0))

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 500 {
				key := fmt.Sprintf("k%d", (w*500+i)%120)
				if i%3 == 0 {
					c.SetWithTTL(key, i, time.Millisecond)
				} else {
					_, _ = c.Get(key)
				}
				if i%97 == 0 {
					c.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
	stats := c.Stats()
	assert.Equal(t, uint64(8*500-8*167), stats.Hits+stats.Misses)
}

func BenchmarkCacheGetHit(b *testing.B) {
	c := New[int](WithMaxSize(1000))
	for i := range 1000 {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	for b.Loop() {
		_, _ = c.Get("k500")
	}
}

func BenchmarkCacheSetWithEviction(b *testing.B) {
	c := New[int](WithMaxSize(256))
	i := 0
	for b.Loop() {
		c.Set(fmt.Sprintf("k%d", i), i)
		i++
	}
}
