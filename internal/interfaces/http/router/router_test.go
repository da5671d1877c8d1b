package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve mounts the group under /api/<version> and replays one request.
func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func mount(g *DomainGroup) *gin.Engine {
	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("ordering", "/orders"))
	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("ordering", "/orders")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/orders/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("production", "/production")
		assert.Equal(t, "production", g.Name())
		assert.Equal(t, "/production", g.Prefix())
	})

	t.Run("registers routes for every verb", func(t *testing.T) {
		echo := func(status int, body string) gin.HandlerFunc {
			return func(c *gin.Context) { c.String(status, body) }
		}

		g := NewDomainGroup("ordering", "/orders")
		g.GET("/lines", echo(http.StatusOK, "lines"))
		g.POST("/lines", echo(http.StatusCreated, "created"))
		g.PUT("/lines/:id", echo(http.StatusOK, "updated"))
		g.PATCH("/lines/:id", echo(http.StatusOK, "patched"))
		g.DELETE("/lines/:id", echo(http.StatusNoContent, ""))
		engine := mount(g)

		tests := []struct {
			method string
			path   string
			status int
		}{
			{"GET", "/api/v1/orders/lines", http.StatusOK},
			{"POST", "/api/v1/orders/lines", http.StatusCreated},
			{"PUT", "/api/v1/orders/lines/123", http.StatusOK},
			{"PATCH", "/api/v1/orders/lines/123", http.StatusOK},
			{"DELETE", "/api/v1/orders/lines/123", http.StatusNoContent},
		}
		for _, tt := range tests {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		g := NewDomainGroup("ordering", "/orders")
		g.Use(func(c *gin.Context) {
			c.Header("X-Company-Scope", "applied")
			c.Next()
		})
		g.GET("/lines", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := serve(mount(g), "GET", "/api/v1/orders/lines")
		assert.Equal(t, "applied", w.Header().Get("X-Company-Scope"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		g := NewDomainGroup("production", "/production")
		g.Group("work-orders", "/work-orders").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "work orders list")
		})
		g.Group("work-centers", "/work-centers").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "work centers list")
		})
		engine := mount(g)

		w := serve(engine, "GET", "/api/v1/production/work-orders")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "work orders list", w.Body.String())

		w = serve(engine, "GET", "/api/v1/production/work-centers")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "work centers list", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	production := NewDomainGroup("production", "/production")
	production.GET("/work-orders", func(c *gin.Context) {
		c.String(http.StatusOK, "work orders")
	})

	trace := NewDomainGroup("trace", "/trace")
	trace.GET("/trace-records", func(c *gin.Context) {
		c.String(http.StatusOK, "trace records")
	})

	r.Register(production).Register(trace)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/production/work-orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "work orders", w.Body.String())

	w = serve(engine, "GET", "/api/v1/trace/trace-records")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace records", w.Body.String())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("ordering", "/orders")
	g.GET("/a", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
		POST("/b", func(c *gin.Context) { c.String(http.StatusOK, "b") }).
		PUT("/c", func(c *gin.Context) { c.String(http.StatusOK, "c") })
	r.Register(g).Setup()

	for _, tt := range []struct{ method, path string }{
		{"GET", "/api/v1/orders/a"},
		{"POST", "/api/v1/orders/b"},
		{"PUT", "/api/v1/orders/c"},
	} {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "Route %s %s should work", tt.method, tt.path)
	}
}
