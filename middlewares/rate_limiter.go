package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/utils"
	"golang.org/x/time/rate"
)

var errRateLimited = utils.NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Muitas requisições, tente novamente em instantes")

// RateLimiter is a per-IP sliding window. Counters live in memory only and
// idle IPs are dropped once per window.
type RateLimiter struct {
	rate        int
	interval    time.Duration
	ips         map[string][]time.Time
	lastCleanup time.Time
	mu          sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

// Allow records a request from ip and reports whether it fits the window.
func (rl *RateLimiter) Allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) >= rl.interval {
		rl.cleanup(now)
	}

	cutoff := now.Add(-rl.interval)
	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// Cleanup drops IPs with no request inside the window.
func (rl *RateLimiter) Cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanup(now)
}

func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.interval)
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
	rl.lastCleanup = now
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", retryAfter(rl.interval))
			utils.AbortWithError(c, http.StatusTooManyRequests, errRateLimited)
			return
		}
		c.Next()
	}
}

// retryAfter renders d as delta-seconds, at least 1.
func retryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// strictLimiter keeps a token bucket per IP. A bucket idle long enough to
// refill completely is dropped, since a fresh one behaves the same.
type strictLimiter struct {
	interval    time.Duration
	burst       int
	idle        time.Duration
	buckets     map[string]*bucket
	lastCleanup time.Time
	mu          sync.Mutex
}

func newStrictLimiter(interval time.Duration, burst int) *strictLimiter {
	return &strictLimiter{
		interval: interval,
		burst:    burst,
		idle:     interval * time.Duration(burst),
		buckets:  make(map[string]*bucket),
	}
}

func (sl *strictLimiter) Allow(ip string, now time.Time) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if now.Sub(sl.lastCleanup) >= sl.idle {
		for key, b := range sl.buckets {
			if now.Sub(b.lastSeen) >= sl.idle {
				delete(sl.buckets, key)
			}
		}
		sl.lastCleanup = now
	}

	b, ok := sl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(sl.interval), sl.burst)}
		sl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// NewStrictRateLimiter is a token bucket per IP for login attempts:
// burst requests, then one every interval.
func NewStrictRateLimiter(interval time.Duration, burst int) gin.HandlerFunc {
	sl := newStrictLimiter(interval, burst)
	return func(c *gin.Context) {
		if !sl.Allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", retryAfter(sl.interval))
			utils.AbortWithError(c, http.StatusTooManyRequests, errRateLimited)
			return
		}
		c.Next()
	}
}
