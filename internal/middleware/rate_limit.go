package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// IsAllowed counts the request in the current fixed window
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// LocalRateLimiter is the in-process token bucket used without Redis. It
// allows Limit requests per Window per key. Buckets that have refilled are
// dropped once per Window, so the map only holds recently active keys.
type LocalRateLimiter struct {
	config    RateLimitConfig
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastPrune time.Time
	now       func() time.Time
}

func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		config:    config,
		limiters:  make(map[string]*rate.Limiter),
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

func (l *LocalRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) >= l.config.Window {
		l.prune(now)
	}

	lim, ok := l.limiters[key]
	if !ok {
		every := rate.Every(l.config.Window / time.Duration(l.config.Limit))
		lim = rate.NewLimiter(every, l.config.Limit)
		l.limiters[key] = lim
	}
	return lim
}

// prune removes full buckets; a new bucket behaves the same. Callers hold mu.
func (l *LocalRateLimiter) prune(now time.Time) {
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limiters, key)
		}
	}
	l.lastPrune = now
}

func (l *LocalRateLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	now := l.now()
	lim := l.limiter(key, now)
	allowed := lim.AllowN(now, 1)

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	reset := now.Add(time.Duration(float64(time.Second) / float64(lim.Limit())))
	return allowed, remaining, reset, nil
}

// RateLimit returns a Gin middleware that enforces limiter per authenticated user
func RateLimit(name string, limiter Limiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}

		allowed, remaining, resetTime, err := limiter.IsAllowed(c.Request.Context(), userID.String())
		if err != nil {
			// Log error but don't fail the request
			logging.Ctx(c.Request.Context()).Warn().Err(err).Str("limiter", name).Msg("rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimited.WithLabelValues(name).Inc()
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// NewRecipeCreationLimiter picks the Redis limiter when a client is given and
// the local one otherwise
func NewRecipeCreationLimiter(redisClient *redis.Client, limit int, window time.Duration) Limiter {
	config := RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	}
	if redisClient != nil {
		return NewRateLimiter(redisClient, config)
	}
	return NewLocalRateLimiter(config)
}
