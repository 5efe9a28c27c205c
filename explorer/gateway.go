package explorer

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Gateway owns the credential pool and the request rate budget. Every remote
// call acquires a credential through it: Acquire blocks until a rate token is
// available, then hands out the next API key round-robin. Rotation happens on
// every acquire, independent of the rate-limiting decision, so load spreads
// across keys even under a single shared ceiling.
type Gateway struct {
	limiter *rate.Limiter

	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewGateway creates a gateway over the given key pool with a shared
// requests-per-second ceiling. An empty pool or non-positive rate is a
// configuration error.
func NewGateway(keys []string, requestsPerSecond int) (*Gateway, error) {
	if len(keys) == 0 {
		return nil, NewError(ErrCodeInvalidConfig, "credential pool cannot be empty", nil)
	}
	for _, key := range keys {
		if key == "" {
			return nil, NewError(ErrCodeInvalidConfig, "API key cannot be empty", nil)
		}
	}
	if requestsPerSecond <= 0 {
		return nil, NewError(ErrCodeInvalidConfig, "rate limit must be greater than 0", nil)
	}

	return &Gateway{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		keys:    append([]string(nil), keys...),
	}, nil
}

// Acquire blocks until a rate token is available, then returns the next API
// key in rotation. It suspends the calling goroutine rather than spinning,
// and unblocks early with ctx.Err() if the context is cancelled.
func (g *Gateway) Acquire(ctx context.Context) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	key := g.keys[g.cursor]
	g.cursor = (g.cursor + 1) % len(g.keys)
	return key, nil
}

// Keys returns the number of credentials in the pool.
func (g *Gateway) Keys() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
