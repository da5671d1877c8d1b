package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func docsRouter(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwtMiddleware), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "docs"})
	})
	return router
}

func getDocs(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_DisabledAnswers404(t *testing.T) {
	router := docsRouter(SwaggerConfig{Enabled: false}, nil)

	w := getDocs(router, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestSwaggerProtection_OpenAccess(t *testing.T) {
	router := docsRouter(SwaggerConfig{Enabled: true}, nil)

	w := getDocs(router, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerProtection_IPAllowlist(t *testing.T) {
	t.Run("listed address passes", func(t *testing.T) {
		router := docsRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, nil)

		w := getDocs(router, "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unlisted address is refused", func(t *testing.T) {
		router := docsRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil)

		w := getDocs(router, "192.168.1.1:12345")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})
}

func TestSwaggerProtection_CIDRAllowlist(t *testing.T) {
	router := docsRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil)

	w := getDocs(router, "10.50.100.200:12345")
	assert.Equal(t, http.StatusOK, w.Code)

	w = getDocs(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwaggerProtection_AuthRequired(t *testing.T) {
	t.Run("auth middleware abort stops the chain", func(t *testing.T) {
		denyAll := func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
		router := docsRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, denyAll)

		w := getDocs(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authenticated request gets through", func(t *testing.T) {
		allowAll := func(c *gin.Context) {
			c.Set("user_id", "usr-4f21")
			c.Next()
		}
		router := docsRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, allowAll)

		w := getDocs(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSwaggerProtection_AllowlistBeforeAuth(t *testing.T) {
	allowAll := func(c *gin.Context) {
		c.Set("user_id", "usr-4f21")
		c.Next()
	}
	router := docsRouter(SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
		AllowedIPs:  []string{"127.0.0.1"},
	}, allowAll)

	// Listed address with valid auth.
	w := getDocs(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusOK, w.Code)

	// Unlisted address is refused before the auth middleware runs.
	w = getDocs(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIsIPAllowed(t *testing.T) {
	tests := []struct {
		name        string
		ip          string
		allowedIPs  []string
		allowedCIDR []string
		want        bool
	}{
		{name: "exact IP match", ip: "192.168.1.1", allowedIPs: []string{"192.168.1.1"}, want: true},
		{name: "no match", ip: "192.168.1.2", allowedIPs: []string{"192.168.1.1"}, want: false},
		{name: "CIDR match", ip: "10.0.0.5", allowedCIDR: []string{"10.0.0.0/8"}, want: true},
		{name: "CIDR no match", ip: "11.0.0.5", allowedCIDR: []string{"10.0.0.0/8"}, want: false},
		{name: "localhost IPv4", ip: "127.0.0.1", allowedIPs: []string{"127.0.0.1"}, want: true},
		{name: "IPv6 localhost", ip: "::1", allowedIPs: []string{"::1"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var allowedIPs []net.IP
			for _, ipStr := range tt.allowedIPs {
				if ip := net.ParseIP(ipStr); ip != nil {
					allowedIPs = append(allowedIPs, ip)
				}
			}

			var allowedNets []*net.IPNet
			for _, cidr := range tt.allowedCIDR {
				if _, network, err := net.ParseCIDR(cidr); err == nil {
					allowedNets = append(allowedNets, network)
				}
			}

			got := isIPAllowed(net.ParseIP(tt.ip), allowedIPs, allowedNets)
			assert.Equal(t, tt.want, got)
		})
	}
}
