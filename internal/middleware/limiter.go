package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/foodflame/storefront/internal/cache"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. It is
// used when no Redis is configured.
type MemoryLimiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

// NewMemoryLimiter creates a limiter refilling rps tokens per second up to burst.
func NewMemoryLimiter(rps, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow consumes one token for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (*cache.RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	l.evictIdle(now)
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	res := &cache.RateLimitResult{Limit: l.burst}

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		res.ResetAt = now.Add(delay)
		return res, nil
	}

	res.Allowed = true
	res.Remaining = int64(v.limiter.TokensAt(now))
	res.ResetAt = now.Add(time.Duration(float64(time.Second) / float64(l.rps)))
	return res, nil
}

// evictIdle drops buckets unused for limiterIdleTTL. Callers hold l.mu.
func (l *MemoryLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastGC) < time.Minute {
		return
	}
	l.lastGC = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, key)
		}
	}
}
