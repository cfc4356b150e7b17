package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
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

// DefaultRateLimitConfig admits 10 requests per minute per client
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "rate_limit:cocktail",
	}
}

// Decision is the outcome of a throttle check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Throttler bounds the number of requests per client identity
type Throttler interface {
	Allow(ctx context.Context, identity string) (Decision, error)
	Config() RateLimitConfig
}

type window struct {
	start time.Time
	count int
}

// MemoryThrottler keeps per-identity fixed windows in process memory. A
// window opens at an identity's first admitted request and rolls over
// Window later. Rejected requests are not counted.
type MemoryThrottler struct {
	config RateLimitConfig
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewMemoryThrottler creates a throttler; now may be nil to use time.Now
func NewMemoryThrottler(config RateLimitConfig, now func() time.Time) *MemoryThrottler {
	if now == nil {
		now = time.Now
	}
	return &MemoryThrottler{
		config:  config,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (t *MemoryThrottler) Config() RateLimitConfig { return t.config }

// Allow admits or rejects one request from identity
func (t *MemoryThrottler) Allow(_ context.Context, identity string) (Decision, error) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)

	w, ok := t.windows[identity]
	if !ok || !now.Before(w.start.Add(t.config.Window)) {
		w = &window{start: now}
		t.windows[identity] = w
	}

	d := Decision{Limit: t.config.Limit, ResetAt: w.start.Add(t.config.Window)}
	if w.count >= t.config.Limit {
		return d, nil
	}
	w.count++
	d.Allowed = true
	d.Remaining = t.config.Limit - w.count
	return d, nil
}

// Len reports the number of tracked identities
func (t *MemoryThrottler) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// sweep drops expired windows at most once per Window. Caller holds mu.
func (t *MemoryThrottler) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.config.Window {
		return
	}
	t.lastSweep = now
	for id, w := range t.windows {
		if !now.Before(w.start.Add(t.config.Window)) {
			delete(t.windows, id)
		}
	}
}

// RedisThrottler handles rate limiting using Redis, sharing counters
// across processes. Windows are aligned to multiples of Window.
type RedisThrottler struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisThrottler creates a new Redis-backed throttler
func NewRedisThrottler(redisClient *redis.Client, config RateLimitConfig) *RedisThrottler {
	return &RedisThrottler{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

func (rl *RedisThrottler) Config() RateLimitConfig { return rl.config }

// Allow increments the identity's counter for the current window
func (rl *RedisThrottler) Allow(ctx context.Context, identity string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, identity, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(rl.config.Window),
	}, nil
}

// ThrottleMiddleware rejects requests from client IPs over their limit.
// Backend errors fail open.
func ThrottleMiddleware(throttler Throttler, logger *slog.Logger) gin.HandlerFunc {
	cfg := throttler.Config()
	return func(c *gin.Context) {
		identity := c.ClientIP()
		decision, err := throttler.Allow(c.Request.Context(), identity)
		if err != nil {
			logger.Warn("rate limit check failed", "client", identity, "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			throttleRejects.Inc()
			logger.Info("request throttled", "client", identity, "path", c.FullPath())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Rate limit exceeded: %d requests per %v. Please wait and try again.", cfg.Limit, cfg.Window),
			})
			return
		}

		c.Next()
	}
}
