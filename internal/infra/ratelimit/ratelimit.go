// Package ratelimit throttles public lookups per client.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	red "learnpress-facade/internal/infra/redis"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Redis shares a fixed window across replicas.
type Redis struct {
	rl     *red.RateLimiter
	route  string
	limit  int
	window time.Duration
}

func NewRedis(rl *red.RateLimiter, route string, perMinute int) *Redis {
	return &Redis{rl: rl, route: route, limit: perMinute, window: time.Minute}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	return r.rl.Allow(ctx, red.ClientKey(r.route, key), r.limit, r.window)
}

// maxIdleBuckets bounds the in-process map before full buckets are pruned.
const maxIdleBuckets = 10000

// Local is an in-process token bucket per key.
type Local struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func NewLocal(requestsPerMinute int) *Local {
	return &Local{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    requestsPerMinute,
	}
}

func (l *Local) Allow(ctx context.Context, key string) (bool, error) {
	return l.getLimiter(key).Allow(), nil
}

func (l *Local) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		if limiter, exists = l.limiters[key]; !exists {
			if len(l.limiters) >= maxIdleBuckets {
				l.pruneLocked(time.Now())
			}
			limiter = rate.NewLimiter(l.rate, l.burst)
			l.limiters[key] = limiter
		}
		l.mu.Unlock()
	}

	return limiter
}

// pruneLocked drops buckets that have refilled completely.
func (l *Local) pruneLocked(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
