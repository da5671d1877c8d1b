package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fabmate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// profiledRequest routes one request through the profiling middleware and
// reports whether the downstream handler ran.
func profiledRequest(t *testing.T, cfg middleware.ProfilingConfig, route, path string, pre ...gin.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	r := gin.New()
	for _, mw := range pre {
		r.Use(mw)
	}
	r.Use(middleware.ProfilingWithConfig(cfg))

	handlerCalled := false
	r.GET(route, func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w, handlerCalled
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := middleware.DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/healthz")
	assert.Contains(t, cfg.SkipPaths, "/ready")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
	assert.Contains(t, cfg.SkipPathPrefixes, "/api-docs")
}

func TestProfilingMiddleware_PassesThrough(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w, called := profiledRequest(t, middleware.ProfilingConfig{Enabled: false},
			"/api/v1/orders", "/api/v1/orders")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("enabled", func(t *testing.T) {
		w, called := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})
}

func TestProfilingMiddleware_SkipPaths(t *testing.T) {
	// Skipped or not, every request must reach its handler; the skip list
	// only decides whether pprof labels get attached.
	paths := []string{
		"/health",
		"/healthz",
		"/ready",
		"/metrics",
		"/swagger/index.html",
		"/api-docs/v1",
		"/api/v1/orders",
		"/health/check",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w, called := profiledRequest(t, middleware.DefaultProfilingConfig(), path, path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestProfilingMiddleware_CustomSkipPaths(t *testing.T) {
	cfg := middleware.ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/custom/health", "/custom/status"},
		SkipPathPrefixes: []string{"/custom/admin"},
	}

	for _, path := range []string{
		"/custom/health",
		"/custom/status",
		"/custom/admin/dashboard",
		"/custom/api",
	} {
		t.Run(path, func(t *testing.T) {
			w, called := profiledRequest(t, cfg, path, path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestProfilingMiddleware_RouteLabels(t *testing.T) {
	// Labels themselves are only visible to the profiler; these verify label
	// extraction never breaks request handling across route shapes.
	cases := map[string]string{
		"/api/v1/orders":              "/api/v1/orders",
		"/api/v1/orders/:id":          "/api/v1/orders/123",
		"/api/v1/customers/:id/notes": "/api/v1/customers/7/notes",
		"/api/v2/orders":              "/api/v2/orders",
		"/api/v10/orders":             "/api/v10/orders",
		"/api/orders":                 "/api/orders",
		"/v1/orders":                  "/v1/orders",
	}

	for route, path := range cases {
		t.Run(route, func(t *testing.T) {
			w, called := profiledRequest(t, middleware.DefaultProfilingConfig(), route, path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestProfilingMiddleware_CompanyLabelSources(t *testing.T) {
	setKey := func(key string, value any) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(key, value)
			c.Next()
		}
	}

	t.Run("company from jwt claims", func(t *testing.T) {
		w, _ := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders",
			setKey(middleware.JWTCompanyIDKey, "company-acme"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("company from scope middleware", func(t *testing.T) {
		w, _ := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders",
			setKey(middleware.CompanyIDKey, "company-acme"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("jwt claim wins over scope", func(t *testing.T) {
		both := func(c *gin.Context) {
			c.Set(middleware.JWTCompanyIDKey, "jwt-company")
			c.Set(middleware.CompanyIDKey, "header-company")
			c.Next()
		}
		w, _ := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders", both)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing company id", func(t *testing.T) {
		w, _ := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong type is skipped, not fatal", func(t *testing.T) {
		w, _ := profiledRequest(t, middleware.DefaultProfilingConfig(),
			"/api/v1/orders", "/api/v1/orders",
			setKey(middleware.JWTCompanyIDKey, 12345))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestProfilingMiddleware_DefaultAndInjector(t *testing.T) {
	for name, mw := range map[string]gin.HandlerFunc{
		"Profiling":                  middleware.Profiling(),
		"ProfilingAttributeInjector": middleware.ProfilingAttributeInjector(),
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(mw)

			handlerCalled := false
			r.GET("/api/v1/orders", func(c *gin.Context) {
				handlerCalled = true
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, handlerCalled)
		})
	}
}

func TestProfilingMiddleware_ContextPreserved(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("custom_key", "custom_value")
		c.Next()
	})
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	r.GET("/api/v1/orders", func(c *gin.Context) {
		value, exists := c.Get("custom_key")
		assert.True(t, exists)
		assert.Equal(t, "custom_value", value)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingMiddleware_ChainOrder(t *testing.T) {
	r := gin.New()

	var order []string
	r.Use(func(c *gin.Context) {
		order = append(order, "first")
		c.Next()
		order = append(order, "first_after")
	})
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	r.Use(func(c *gin.Context) {
		order = append(order, "third")
		c.Next()
		order = append(order, "third_after")
	})
	r.GET("/api/v1/orders", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "third", "handler", "third_after", "first_after"}, order)
}
