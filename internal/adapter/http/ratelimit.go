package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/time/rate"
)

// maxTrackedKeys bounds the limiter table.
const maxTrackedKeys = 10_000

type trackedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per remote address.
//
// When the table is full, addresses idle long enough for their bucket to
// refill are pruned first; only if none are, the least recently seen address
// is dropped.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*trackedLimiter
	rate     rate.Limit
	burst    int
	idle     time.Duration
	maxKeys  int
	now      func() time.Time
}

// NewRateLimiter allows perSecond sustained requests with the given burst per address.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	var idle time.Duration
	if perSecond > 0 {
		idle = time.Duration(float64(burst) / perSecond * float64(time.Second))
	}
	return &RateLimiter{
		limiters: make(map[string]*trackedLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		maxKeys:  maxTrackedKeys,
		now:      time.Now,
	}
}

// Allow reports whether a request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= rl.maxKeys {
			rl.evict(now)
		}
		entry = &trackedLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evict removes idle entries, or the oldest one when every entry is active.
// A refilled bucket behaves like a fresh one, so pruning it changes nothing.
func (rl *RateLimiter) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= rl.idle {
			delete(rl.limiters, key)
			continue
		}
		if !found || entry.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, entry.lastSeen, true
		}
	}
	if len(rl.limiters) >= rl.maxKeys && found {
		delete(rl.limiters, oldestKey)
	}
}

// Middleware returns a Huma operation middleware answering 429 once the caller's budget is spent.
func (rl *RateLimiter) Middleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !rl.Allow(remoteHost(ctx.RemoteAddr())) {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
		next(ctx)
	}
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
