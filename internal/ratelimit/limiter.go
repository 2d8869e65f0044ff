// Package ratelimit provides token-bucket rate limiting for outbound
// comparison traffic, so runs stay polite to the environments under test.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// PerHostLimiter rate-limits requests per target host using token buckets.
// Limiters are created lazily on first use. A zero or negative rate means
// unlimited.
type PerHostLimiter struct {
	mu       sync.Mutex
	rps      float64
	burst    int
	limiters map[string]*rate.Limiter
}

// NewPerHostLimiter creates a limiter with the given requests-per-second
// rate. A non-positive burst defaults to the rate, floored at one.
func NewPerHostLimiter(rps float64, burst int) *PerHostLimiter {
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &PerHostLimiter{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a token is available for the host, or ctx is cancelled.
func (l *PerHostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.rps <= 0 {
		return nil
	}
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", host, err)
	}
	return nil
}
