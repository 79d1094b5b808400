package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Per-IP rate limiting
// ──────────────────────────────────────────────────────────────────────────────

const (
	// bucketIdleTTL is how long an IP may be silent before its bucket is
	// dropped; sweepEvery bounds how often the map is scanned for idle ones.
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = time.Minute
)

// tokenBucket tracks the remaining allowance for one client IP.
type tokenBucket struct {
	tokens   float64
	refilled time.Time
}

// ipLimiter is a token-bucket limiter keyed by client IP. All state sits
// behind one mutex; idle buckets are swept inline during take, so there is
// no background goroutine to manage.
type ipLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rps       float64
	burst     float64
	nextSweep time.Time
	now       func() time.Time
}

// newIPLimiter creates a limiter allowing rps sustained requests per second
// per IP, with a burst of twice that (at least 5) to absorb page loads.
func newIPLimiter(rps int) *ipLimiter {
	burst := float64(rps * 2)
	if burst < 5 {
		burst = 5
	}
	return &ipLimiter{
		buckets: make(map[string]*tokenBucket),
		rps:     float64(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// take deducts one token for ip, refilling its bucket pro rata for the time
// elapsed since the last call. Returns false when the bucket is empty.
func (l *ipLimiter) take(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(sweepEvery)
	}

	b := l.buckets[ip]
	if b == nil {
		b = &tokenBucket{tokens: l.burst, refilled: now}
		l.buckets[ip] = b
	}

	b.tokens += now.Sub(b.refilled).Seconds() * l.rps
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have been idle past bucketIdleTTL. Caller holds mu.
func (l *ipLimiter) sweep(now time.Time) {
	idle := now.Add(-bucketIdleTTL)
	for ip, b := range l.buckets {
		if b.refilled.Before(idle) {
			delete(l.buckets, ip)
		}
	}
}

// PerIPRateLimit returns middleware enforcing rps requests per second per
// client IP. Exceeding clients get 429 with the standard error envelope.
// rps <= 0 disables limiting entirely (useful in tests and dev).
func PerIPRateLimit(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newIPLimiter(rps)
	return func(c *gin.Context) {
		if !l.take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded, retry shortly",
				"code":    "ERR_RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
