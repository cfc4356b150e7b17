package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryThrottlerWindow(t *testing.T) {
	clock := newFakeClock()
	throttler := NewMemoryThrottler(DefaultRateLimitConfig(), clock.Now)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		d, err := throttler.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i)
		assert.Equal(t, 10-i, d.Remaining)
		clock.Advance(time.Second)
	}

	d, err := throttler.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "11th request should be rejected")
	assert.Equal(t, 0, d.Remaining)

	// other identities have their own window
	d, err = throttler.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// the first window opened 10s ago; roll past it
	clock.Advance(50 * time.Second)
	d, err = throttler.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "request after rollover should be admitted")
	assert.Equal(t, 9, d.Remaining)
}

func TestMemoryThrottlerRejectsDoNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	throttler := NewMemoryThrottler(RateLimitConfig{Window: time.Minute, Limit: 1}, clock.Now)
	ctx := context.Background()

	first, _ := throttler.Allow(ctx, "a")
	require.True(t, first.Allowed)

	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		d, _ := throttler.Allow(ctx, "a")
		assert.False(t, d.Allowed)
		assert.Equal(t, first.ResetAt, d.ResetAt)
	}

	clock.Advance(10 * time.Second)
	d, _ := throttler.Allow(ctx, "a")
	assert.True(t, d.Allowed)
}

func TestMemoryThrottlerSweepsExpiredIdentities(t *testing.T) {
	clock := newFakeClock()
	throttler := NewMemoryThrottler(DefaultRateLimitConfig(), clock.Now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = throttler.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, throttler.Len())

	clock.Advance(2 * time.Minute)
	_, _ = throttler.Allow(ctx, "10.0.1.1")
	assert.Equal(t, 1, throttler.Len())
}

func TestMemoryThrottlerConcurrent(t *testing.T) {
	throttler := NewMemoryThrottler(RateLimitConfig{Window: time.Hour, Limit: 10}, nil)

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := throttler.Allow(context.Background(), "same-client")
			if err == nil && d.Allowed {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, admitted)
}

func newThrottledRouter(throttler Throttler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ThrottleMiddleware(throttler, logging.Nop()))
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return router
}

func TestThrottleMiddleware(t *testing.T) {
	clock := newFakeClock()
	throttler := NewMemoryThrottler(RateLimitConfig{Window: time.Minute, Limit: 2}, clock.Now)
	router := newThrottledRouter(throttler)

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("192.0.2.1:1234")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("192.0.2.1:1235").Code)

	w = do("192.0.2.1:1236")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Rate limit exceeded")

	// a different client address is unaffected
	assert.Equal(t, http.StatusOK, do("192.0.2.9:1234").Code)
}

type brokenThrottler struct{}

func (brokenThrottler) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("connection refused")
}

func (brokenThrottler) Config() RateLimitConfig { return DefaultRateLimitConfig() }

func TestThrottleMiddlewareFailsOpen(t *testing.T) {
	router := newThrottledRouter(brokenThrottler{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

func TestRedisThrottler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	throttler := NewRedisThrottler(client, RateLimitConfig{Window: time.Minute, Limit: 10, KeyPrefix: "test:throttle"})
	clock := newFakeClock()
	throttler.now = clock.Now

	for i := 1; i <= 10; i++ {
		d, err := throttler.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i)
	}

	d, err := throttler.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	clock.Advance(time.Minute)
	d, err = throttler.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
