package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// hit sends a request with an optional client IP and extra header.
func hit(router *gin.Engine, method, path, remoteAddr string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("enforces the limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := range 3 {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("resets after the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		limiter.Allow("client3")
		limiter.Allow("client3")
		assert.False(t, limiter.Allow("client3"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("remaining counts down", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("newclient"))
		limiter.Allow("newclient")
		limiter.Allow("newclient")
		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("concurrent access admits exactly the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0

		for range 150 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent-client") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("returns 429 once the limit is spent", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimit(NewRateLimiter(2, time.Minute)))
		router.GET("/api/v1/orders", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		for range 2 {
			assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/v1/orders", "").Code)
		}

		w := hit(router, "GET", "/api/v1/orders", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("keys on the company header", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimit(NewRateLimiter(1, time.Minute)))
		router.GET("/api/v1/orders", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/v1/orders", "", CompanyHeaderKey, "company-acme").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "GET", "/api/v1/orders", "", CompanyHeaderKey, "company-acme").Code)

		// A different company has its own bucket.
		assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/v1/orders", "", CompanyHeaderKey, "company-borel").Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitByKey(NewRateLimiter(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))
	router.GET("/api/v1/orders", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/v1/orders", "", "X-User-ID", "user1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "GET", "/api/v1/orders", "", "X-User-ID", "user1").Code)
}

func TestAuthRateLimit(t *testing.T) {
	newLoginRouter := func(limit int) *gin.Engine {
		router := gin.New()
		router.Use(AuthRateLimit(NewRateLimiter(limit, time.Minute)))
		router.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		return router
	}

	t.Run("blocks with the auth-specific error", func(t *testing.T) {
		router := newLoginRouter(3)

		for i := range 3 {
			w := hit(router, "POST", "/login", "192.168.1.100:12345")
			assert.Equal(t, http.StatusOK, w.Code, "attempt %d should be allowed", i+1)
		}

		w := hit(router, "POST", "/login", "192.168.1.100:12345")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	})

	t.Run("exposes rate limit headers", func(t *testing.T) {
		router := newLoginRouter(5)

		w := hit(router, "POST", "/login", "192.168.1.100:12345")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("blocked response carries Retry-After", func(t *testing.T) {
		router := newLoginRouter(1)

		hit(router, "POST", "/login", "192.168.1.100:12345")
		w := hit(router, "POST", "/login", "192.168.1.100:12345")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("keys on the client IP", func(t *testing.T) {
		router := newLoginRouter(2)

		for range 2 {
			assert.Equal(t, http.StatusOK, hit(router, "POST", "/login", "192.168.1.1:12345").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "POST", "/login", "192.168.1.1:12345").Code)

		assert.Equal(t, http.StatusOK, hit(router, "POST", "/login", "192.168.1.2:12345").Code)
	})

	t.Run("does not share buckets with the global limiter", func(t *testing.T) {
		router := gin.New()

		authGroup := router.Group("/auth")
		authGroup.Use(AuthRateLimit(NewRateLimiter(2, time.Minute)))
		authGroup.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		router.Use(RateLimit(NewRateLimiter(100, time.Minute)))
		router.GET("/api/data", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": "test"})
		})

		for range 2 {
			assert.Equal(t, http.StatusOK, hit(router, "POST", "/auth/login", "192.168.1.100:12345").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "POST", "/auth/login", "192.168.1.100:12345").Code)

		// The same IP still gets through elsewhere.
		assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/data", "192.168.1.100:12345").Code)
	})
}
