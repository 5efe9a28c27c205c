package explorer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_HitWithinTTL(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var computes int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&computes, 1)
		return []byte(`"value"`), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute(context.Background(), "key", time.Minute, compute)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if string(got) != `"value"` {
			t.Errorf("unexpected value %q", got)
		}
	}

	if n := atomic.LoadInt32(&computes); n != 1 {
		t.Errorf("expected a single compute within TTL, got %d", n)
	}
}

func TestCache_StaleEntryRecomputed(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var computes int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&computes, 1)
		return []byte("1"), nil
	}

	ttl := 30 * time.Millisecond
	if _, err := c.GetOrCompute(context.Background(), "key", ttl, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.GetOrCompute(context.Background(), "key", ttl, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	if n := atomic.LoadInt32(&computes); n != 2 {
		t.Errorf("expected stale entry to recompute, got %d computes", n)
	}
}

func TestCache_SingleFlight(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var computes int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&computes, 1)
		time.Sleep(50 * time.Millisecond)
		return []byte("shared"), nil
	}

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrCompute(context.Background(), "key", time.Minute, compute)
			if err != nil {
				t.Errorf("GetOrCompute: %v", err)
				return
			}
			if string(got) != "shared" {
				t.Errorf("unexpected value %q", got)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&computes); n != 1 {
		t.Errorf("expected one in-flight compute shared by all callers, got %d", n)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var computes int32
	compute := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&computes, 1) == 1 {
			return nil, errors.New("remote unavailable")
		}
		return []byte("ok"), nil
	}

	if _, err := c.GetOrCompute(context.Background(), "key", time.Minute, compute); err == nil {
		t.Fatal("expected first compute to fail")
	}
	got, err := c.GetOrCompute(context.Background(), "key", time.Minute, compute)
	if err != nil {
		t.Fatalf("second GetOrCompute: %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("unexpected value %q", got)
	}
	if n := atomic.LoadInt32(&computes); n != 2 {
		t.Errorf("expected failed lookup to be retried, got %d computes", n)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	counter := func(n *int32) ComputeFunc {
		return func(ctx context.Context) ([]byte, error) {
			atomic.AddInt32(n, 1)
			return []byte("x"), nil
		}
	}

	var a, b, d int32
	ctx := context.Background()
	c.GetOrCompute(ctx, "a", time.Minute, counter(&a))
	c.GetOrCompute(ctx, "b", time.Minute, counter(&b))
	// Touch "a" so "b" becomes least recently used, then overflow.
	c.GetOrCompute(ctx, "a", time.Minute, counter(&a))
	c.GetOrCompute(ctx, "d", time.Minute, counter(&d))

	if entries, _ := c.Stats(); entries != 2 {
		t.Errorf("expected 2 entries after eviction, got %d", entries)
	}

	// "b" was evicted and must recompute; "a" is still cached.
	c.GetOrCompute(ctx, "b", time.Minute, counter(&b))
	c.GetOrCompute(ctx, "a", time.Minute, counter(&a))
	if got := atomic.LoadInt32(&b); got != 2 {
		t.Errorf("expected evicted key to recompute, got %d computes", got)
	}
	if got := atomic.LoadInt32(&a); got != 1 {
		t.Errorf("expected retained key to stay cached, got %d computes", got)
	}
}

func TestCache_StatsAndClear(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	ctx := context.Background()
	c.GetOrCompute(ctx, "a", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("12345"), nil
	})
	c.GetOrCompute(ctx, "b", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("123"), nil
	})

	entries, weight := c.Stats()
	if entries != 2 {
		t.Errorf("expected 2 entries, got %d", entries)
	}
	if weight != 8 {
		t.Errorf("expected weight 8, got %d", weight)
	}

	c.Clear()
	entries, weight = c.Stats()
	if entries != 0 || weight != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries weight %d", entries, weight)
	}
}

func TestCache_ZeroTTLBypasses(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var computes int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&computes, 1)
		return []byte("x"), nil
	}

	ctx := context.Background()
	c.GetOrCompute(ctx, "key", 0, compute)
	c.GetOrCompute(ctx, "key", 0, compute)
	if n := atomic.LoadInt32(&computes); n != 2 {
		t.Errorf("expected zero TTL to bypass the cache, got %d computes", n)
	}
	if entries, _ := c.Stats(); entries != 0 {
		t.Errorf("expected nothing stored, got %d entries", entries)
	}
}
