package server

import (
	"net/http"
	"sync"
	"time"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientIdleTimeout is how long an unused client bucket is kept
const clientIdleTimeout = 30 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client and session
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	refillRate rate.Limit
	bucketSize int
	now        func() time.Time
}

// NewRateLimiter creates a limiter refilling refillRate tokens per second
// into buckets of bucketSize
func NewRateLimiter(refillRate, bucketSize int) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		refillRate: rate.Limit(refillRate),
		bucketSize: bucketSize,
		now:        time.Now,
	}
}

// clientKey separates sessions that share an address
func clientKey(c *gin.Context) string {
	return c.ClientIP() + "|" + c.Param("sid")
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.refillRate, rl.bucketSize)}
		rl.clients[key] = cl
	}
	cl.lastSeen = rl.now()
	return cl.limiter
}

// Cleanup drops buckets idle for longer than clientIdleTimeout and returns how many went
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, cl := range rl.clients {
		if rl.now().Sub(cl.lastSeen) > clientIdleTimeout {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Limit is the gin middleware
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		if !rl.get(key).Allow() {
			utils.Warn("rate limit exceeded", map[string]any{"client": key, "path": c.FullPath()})
			c.Abort()
			// retry-capable, like a transport failure
			utils.JSONFailure(c, http.StatusTooManyRequests, marketerrors.KindTransport.String(),
				marketerrors.ErrRateLimited, "too many refresh requests, try again shortly")
			return
		}
		c.Next()
	}
}
