package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/ordersystem/utils"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle clients are
// swept at most once per sweepEvery.
type RateLimiter struct {
	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	visitors   map[string]*visitor
	mu         sync.Mutex
	now        func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:    10 * time.Minute,
		sweepEvery: time.Minute,
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Sub(rl.lastSweep) >= rl.sweepEvery {
		rl.sweep(now)
	}
	return v.limiter
}

// sweep forgets clients that went quiet. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, other := range rl.visitors {
		if now.Sub(other.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.limiterFor(ip).Allow() {
			utils.InfoLogger.WithField("ip", ip).Warn("rate limit exceeded")
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("Too many requests, please wait before trying again"))
			return
		}
		c.Next()
	}
}
