package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter applies a token-bucket rate limit per key (client IP, user ID, ...).
// Buckets are created on first use and kept for the process lifetime.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// New creates a keyed rate limiter allowing rps requests per second with the
// given burst.
func New(rps, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
