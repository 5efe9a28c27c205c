package explorer

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ComputeFunc produces the value for a cache key, typically by performing the
// real remote call through the Gateway.
type ComputeFunc func(ctx context.Context) ([]byte, error)

type cacheEntry struct {
	value      []byte
	insertedAt time.Time
	weight     int64
}

type flight struct {
	done  chan struct{}
	value []byte
	err   error
}

// Cache memoizes idempotent read results with an absolute TTL and LRU
// eviction. Concurrent lookups for the same key are single-flight: the first
// caller computes, everyone else waits for and shares that result. Errors are
// shared with in-flight waiters but never stored, so a failed lookup is
// retried on the next call.
type Cache struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, *cacheEntry]
	inFlight map[string]*flight
	weight   int64
}

// NewCache creates a cache bounded to maxEntries.
func NewCache(maxEntries int) (*Cache, error) {
	if maxEntries <= 0 {
		return nil, NewError(ErrCodeInvalidConfig, "cache max entries must be greater than 0", nil)
	}

	c := &Cache{
		inFlight: make(map[string]*flight),
	}
	// The eviction callback fires synchronously from Add/Remove/Purge, all of
	// which run under c.mu, so the weight counter needs no extra locking.
	entries, err := lru.NewWithEvict(maxEntries, func(_ string, e *cacheEntry) {
		c.weight -= e.weight
	})
	if err != nil {
		return nil, NewError(ErrCodeInvalidConfig, err.Error(), nil)
	}
	c.entries = entries
	return c, nil
}

// GetOrCompute returns the cached value for key if it is younger than ttl,
// otherwise invokes compute and stores the result. The TTL is absolute from
// insertion; a hit does not refresh it. A non-positive ttl bypasses the cache
// entirely.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if ttl <= 0 {
		return compute(ctx)
	}

	c.mu.Lock()

	if entry, ok := c.entries.Get(key); ok {
		if time.Since(entry.insertedAt) < ttl {
			c.mu.Unlock()
			return entry.value, nil
		}
		// Stale. Drop it so the LRU slot is freed even if compute fails.
		c.entries.Remove(key)
	}

	if fl, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.value, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fl := &flight{done: make(chan struct{})}
	c.inFlight[key] = fl
	c.mu.Unlock()

	value, err := compute(ctx)

	c.mu.Lock()
	if err == nil {
		entry := &cacheEntry{value: value, insertedAt: time.Now(), weight: int64(len(value))}
		c.entries.Add(key, entry)
		c.weight += entry.weight
	}
	fl.value = value
	fl.err = err
	delete(c.inFlight, key)
	close(fl.done)
	c.mu.Unlock()

	return value, err
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Stats returns the entry count and the total weight (bytes) of stored values.
func (c *Cache) Stats() (entries int, weight int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len(), c.weight
}
