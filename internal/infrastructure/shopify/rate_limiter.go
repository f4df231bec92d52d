package shopify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles Admin API calls with one token bucket per shop, since
// Shopify's limits are per store.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows requestsPerSecond per shop with the given burst
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the shop may issue another request or ctx is done
func (l *RateLimiter) Wait(ctx context.Context, shop string) error {
	return l.limiter(shop).Wait(ctx)
}

func (l *RateLimiter) limiter(shop string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[shop]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[shop] = lim
	}
	return lim
}
