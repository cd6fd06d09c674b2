package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, remaining = rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	// other clients have their own window
	ok, _ = rl.Allow("b")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, remaining = rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/v1/auth/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, http.MethodGet, "/api/v1/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", decodeError(t, w).Code)
}

func TestRateLimit_PerAccount(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	svc := newTestJWTService()
	first := issueToken(t, svc, newTestSubject())
	second := issueToken(t, svc, newTestSubject())

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc), RateLimit(rl))
	r.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/products", first.AccessToken).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/products", second.AccessToken).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/api/v1/products", first.AccessToken).Code)
}
