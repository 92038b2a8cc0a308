package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(mw *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(mw.Handler())
	router.GET("/api/members", func(c *gin.Context) {
		authType, _ := c.Get(ContextKeyAuthType)
		c.JSON(http.StatusOK, gin.H{"auth_type": authType})
	})
	return router
}

func request(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_BearerToken(t *testing.T) {
	router := newProtectedRouter(NewMiddleware("s3cret", nil, nil))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer s3cret", http.StatusOK},
		{"lowercase scheme", "bearer s3cret", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic s3cret", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMiddleware_SetsAuthType(t *testing.T) {
	router := newProtectedRouter(NewMiddleware("s3cret", nil, nil))

	w := request(router, "Bearer s3cret")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"auth_type":"bearer"}`, w.Body.String())
}

func TestMiddleware_EmptyConfiguredTokenRejectsAll(t *testing.T) {
	router := newProtectedRouter(NewMiddleware("", nil, nil))

	assert.Equal(t, http.StatusUnauthorized, request(router, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "Bearer anything").Code)
}

func TestMiddleware_LocksOutAfterFailures(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, LockoutDuration: time.Minute})
	defer limiter.Stop()
	router := newProtectedRouter(NewMiddleware("s3cret", limiter, nil))

	assert.Equal(t, http.StatusUnauthorized, request(router, "Bearer a").Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "Bearer b").Code)

	w := request(router, "Bearer s3cret")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimiter_WindowAndSuccess(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Minute})
	defer limiter.Stop()
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	locked, _ := limiter.RecordFailure("10.0.0.1")
	assert.False(t, locked)

	limiter.RecordSuccess("10.0.0.1")
	locked, _ = limiter.RecordFailure("10.0.0.1")
	assert.False(t, locked, "success resets the count")

	now = now.Add(2 * time.Minute)
	locked, _ = limiter.RecordFailure("10.0.0.1")
	assert.False(t, locked, "an expired window resets the count")

	locked, retryAfter := limiter.RecordFailure("10.0.0.1")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, wait := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, wait)

	allowed, _ = limiter.Allow("10.0.0.2")
	assert.True(t, allowed)

	now = now.Add(time.Minute + time.Second)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.True(t, allowed)

	limiter.cleanup()
	assert.Empty(t, limiter.attempts)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiter(DefaultRateLimitConfig())
	limiter.Stop()
	limiter.Stop()
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), StrictTransportSecurityMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	router.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(300*time.Millisecond))
	assert.Equal(t, 60, retryAfterSeconds(time.Minute))
	assert.Equal(t, 61, retryAfterSeconds(time.Minute+time.Millisecond))
}
