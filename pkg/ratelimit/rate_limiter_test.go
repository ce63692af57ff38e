package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelfkeeper/internal/shared/config"
	"shelfkeeper/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, cfg)
}

func limitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:                     true,
		WindowDuration:              time.Minute,
		DefaultRequests:             5,
		ReservationCriticalRequests: 3,
		WhitelistedIPs:              []string{"10.0.0.9"},
	}
}

func TestIsAllowed_SlidingWindow(t *testing.T) {
	limiter := newTestLimiter(t, limitConfig())
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeReservationCritical)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, result.Remaining)
	}

	result, err := limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeReservationCritical)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	// Other classes and clients have their own windows.
	result, err = limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	result, err = limiter.IsAllowed(ctx, "5.6.7.8", RateLimitTypeReservationCritical)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	now = now.Add(time.Minute + time.Millisecond)
	result, err = limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeReservationCritical)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestIsAllowed_WhitelistAndDisabled(t *testing.T) {
	cfg := limitConfig()
	cfg.ReservationCriticalRequests = 1
	limiter := newTestLimiter(t, cfg)

	for i := 0; i < 3; i++ {
		result, err := limiter.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeReservationCritical)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	cfg.Enabled = false
	disabled := newTestLimiter(t, cfg)
	for i := 0; i < 3; i++ {
		result, err := disabled.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeReservationCritical)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestGetRateLimitType(t *testing.T) {
	cases := map[string]RateLimitType{
		"/health": RateLimitTypeHealth,
		"/api/v1/admin/book-reservations/:id/status": RateLimitTypeAdmin,
		"/api/v1/book-reservations":                  RateLimitTypeReservationCritical,
		"/api/v1/book-reservations/batch":            RateLimitTypeReservationCritical,
		"/api/v1/seat-reservations":                  RateLimitTypeReservationCritical,
		"/api/v1/book-reservations/me":               RateLimitTypeReservation,
		"/api/v1/seat-reservations/occupied":         RateLimitTypeReservation,
		"/api/v1/reservation-logs/me":                RateLimitTypeReservation,
		"/api/v1/seats/time-slots":                   RateLimitTypePublic,
		"/api/v1/books/:id":                          RateLimitTypePublic,
		"/swagger/*any":                              RateLimitTypeDefault,
	}
	for path, want := range cases {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := limitConfig()
	cfg.ReservationCriticalRequests = 1
	limiter := newTestLimiter(t, cfg)

	router := gin.New()
	router.Use(Middleware(limiter, logger.Discard()))
	router.POST("/api/v1/seat-reservations", func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/seat-reservations", nil)
		req.RemoteAddr = "1.2.3.4:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
}

func TestGetClientIP_PrefersForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "203.0.113.7", getClientIP(c))
}
