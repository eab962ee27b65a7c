package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// EdgeLimiter is a per-client token bucket in front of the API. It protects
// the process from bursts; the per-action quotas enforced in the services
// are the real policy layer.
type EdgeLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewEdgeLimiter(rps float64, burst int) *EdgeLimiter {
	return &EdgeLimiter{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

func (e *EdgeLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if ent, ok := e.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(e.rps, e.burst)
	e.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (e *EdgeLimiter) cleanup() {
	cutoff := time.Now().Add(-e.idleTTL)

	e.mu.Lock()
	defer e.mu.Unlock()

	for k, ent := range e.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(e.entries, k)
		}
	}
}

// StartJanitor evicts idle buckets until ctx is cancelled.
func (e *EdgeLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				e.cleanup()
			}
		}
	}()
}

// Handler keys buckets by client IP. Authenticated identity is not known
// yet at this point in the chain.
func (e *EdgeLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !e.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
