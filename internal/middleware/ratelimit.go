package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

// KeyedLimiter keeps one token bucket per client key. Buckets idle for
// limiterIdleTTL are dropped on the next sweep.
type KeyedLimiter struct {
	clock     clockwork.Clock
	r         rate.Limit
	burst     int
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows perMinute requests per key with the given burst.
func NewKeyedLimiter(clock clockwork.Clock, perMinute float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		clock:     clock,
		r:         rate.Limit(perMinute / 60),
		burst:     burst,
		buckets:   make(map[string]*bucket),
		lastSweep: clock.Now(),
	}
}

// Allow consumes a token for key. When the bucket is empty it returns the
// wait until the next token.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.r, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := b.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Size returns the number of live buckets.
func (l *KeyedLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

var (
	// Telegram login, keyed by IP
	AuthLimiter = NewKeyedLimiter(clockwork.NewRealClock(), 20, 10)

	// Meal analysis and report cards hit the LLM
	AnalyzeLimiter = NewKeyedLimiter(clockwork.NewRealClock(), 20, 5)

	// Everything else behind auth
	GeneralLimiter = NewKeyedLimiter(clockwork.NewRealClock(), 600, 50)
)

// limiterKey prefers the authenticated user so users behind one NAT do not
// share a bucket.
func limiterKey(c *gin.Context) string {
	if userID := c.GetString("userId"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// RateLimitMiddleware rejects requests over the limiter's budget with 429
// and a Retry-After header.
func RateLimitMiddleware(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limiterKey(c)
		ok, wait := limiter.Allow(key)
		if ok {
			c.Next()
			return
		}

		logger.Warn().
			Str("key", key).
			Str("path", c.Request.URL.Path).
			Dur("retry_after", wait).
			Msg("Rate limit exceeded")

		seconds := int(wait.Seconds())
		if wait > time.Duration(seconds)*time.Second {
			seconds++
		}
		c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
		c.AbortWithStatusJSON(errors.ErrRateLimit.Status, errors.ErrRateLimit.Payload())
	}
}

func AuthRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(AuthLimiter)
}

func AnalyzeRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(AnalyzeLimiter)
}

func GeneralRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(GeneralLimiter)
}
